package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/export"
)

var (
	exportFormat string
	exportDir    string
)

var exportCmd = &cobra.Command{
	Use:   "export [leads.json]",
	Short: "Export a JSON lead list or run result to xlsx or csv",
	Long:  "Reads leads from the given file, or stdin when omitted, and writes leads_YYYYMMDD_HHMMSS.<ext> to the export directory.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src := ""
		if len(args) == 1 {
			src = args[0]
		}
		leads, err := readLeads(src)
		if err != nil {
			return err
		}

		dir := exportDir
		if dir == "" {
			dir = cfg.ExportDir
		}
		path, err := export.WriteFile(dir, leads, export.ParseFormat(exportFormat), time.Now())
		if err != nil {
			return err
		}
		zap.L().Info("leads exported", zap.String("path", path), zap.Int("leads", len(leads)))
		fmt.Println(path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "xlsx", "file format: xlsx or csv")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "output directory (default from config)")
	rootCmd.AddCommand(exportCmd)
}
