package main

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/linkedin"
	"github.com/sells-group/lead-scout/internal/scorer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from external sources",
}

var (
	importMapping map[string]string
	importScore   bool
	importOut     string
	importExport  string
)

var importLinkedInCmd = &cobra.Command{
	Use:   "linkedin <file.csv>",
	Short: "Turn a LinkedIn CSV export into leads",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return eris.Wrapf(err, "open %s", args[0])
		}
		defer f.Close() //nolint:errcheck

		leads, err := linkedin.Parse(f, importMapping)
		if err != nil {
			return err
		}
		zap.L().Info("linkedin import complete", zap.String("file", args[0]), zap.Int("leads", len(leads)))

		if importScore {
			if err := cfg.Scoring.Validate(); err != nil {
				return err
			}
			scorer.New(cfg.Scoring).ScoreAll(leads, nil, nil)
		}

		if importExport != "" {
			path, err := export.WriteFile(cfg.ExportDir, leads, export.ParseFormat(importExport), time.Now())
			if err != nil {
				return err
			}
			zap.L().Info("leads exported", zap.String("path", path))
		}

		return writeJSONOut(importOut, map[string]any{"imported_rows": len(leads), "leads": leads})
	},
}

func init() {
	importLinkedInCmd.Flags().StringToStringVar(&importMapping, "map", nil, "explicit column mapping, e.g. company=Azienda,position=Ruolo")
	importLinkedInCmd.Flags().BoolVar(&importScore, "score", false, "score the imported leads")
	importLinkedInCmd.Flags().StringVarP(&importOut, "out", "o", "", "write the JSON leads to this file (default stdout)")
	importLinkedInCmd.Flags().StringVar(&importExport, "export", "", "also export leads to the export dir: xlsx or csv")
	importCmd.AddCommand(importLinkedInCmd)
	rootCmd.AddCommand(importCmd)
}
