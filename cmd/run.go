package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/export"
	"github.com/sells-group/lead-scout/internal/model"
)

// requestFlags are the run request flags shared by run and discover.
type requestFlags struct {
	file         string
	industry     string
	country      string
	region       string
	provinces    []string
	segment      string
	window       []int
	channels     []string
	limit        int
	referenceURL string
	preset       string
	noProfile    bool
	forceRefresh bool
	drafts       bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.file, "request", "", "JSON run request file; flags override its fields")
	fs.StringVar(&f.industry, "industry", "", "target industry")
	fs.StringVar(&f.country, "country", "", "country (default Italia)")
	fs.StringVar(&f.region, "region", "", "region")
	fs.StringSliceVar(&f.provinces, "province", nil, "province to search (repeatable)")
	fs.StringVar(&f.segment, "segment", "", "segment type: PMI, Enterprise or Unknown")
	fs.IntSliceVar(&f.window, "window", nil, "investment window in months, e.g. 4,6")
	fs.StringSliceVar(&f.channels, "channel", nil, "allowed channel: email, linkedin or phone (repeatable)")
	fs.IntVar(&f.limit, "limit", 0, "maximum number of companies (default from config)")
	fs.StringVar(&f.referenceURL, "reference-url", "", "reference company website for the project profile")
	fs.StringVar(&f.preset, "preset", "", "industry preset id")
	fs.BoolVar(&f.noProfile, "no-profile", false, "skip the reference project profile")
	fs.BoolVar(&f.forceRefresh, "force-refresh", false, "rebuild the reference profile even if cached")
	fs.BoolVar(&f.drafts, "drafts", false, "generate outreach email drafts")
}

// build returns the run request from the request file, if any, with set
// flags applied on top.
func (f *requestFlags) build(cmd *cobra.Command) (*model.RunRequest, error) {
	req := &model.RunRequest{}
	if f.file != "" {
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, eris.Wrapf(err, "read request %s", f.file)
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, eris.Wrapf(err, "parse request %s", f.file)
		}
	}

	fs := cmd.Flags()
	if fs.Changed("industry") {
		req.Industry = f.industry
	}
	if fs.Changed("country") {
		req.Geography.Country = f.country
	}
	if fs.Changed("region") {
		req.Geography.Region = f.region
	}
	if fs.Changed("province") {
		req.Geography.Provinces = f.provinces
	}
	if fs.Changed("segment") {
		req.Segment.Type = f.segment
	}
	if fs.Changed("window") {
		req.InvestmentWindowMonths = f.window
	}
	if fs.Changed("channel") {
		req.AllowedChannels = f.channels
	}
	if fs.Changed("limit") {
		req.Limit = f.limit
	}
	if fs.Changed("reference-url") {
		req.ReferenceCompanyURL = f.referenceURL
	}
	if fs.Changed("preset") {
		req.Preset = f.preset
	}
	if f.noProfile {
		disabled := false
		req.EnableProjectProfile = &disabled
	}
	if f.forceRefresh {
		req.ForceRefreshProfile = true
	}
	if f.drafts {
		req.IncludeEmailDrafts = true
	}
	return req, nil
}

var (
	runFlags  requestFlags
	runOut    string
	runExport string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full lead pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := runFlags.build(cmd)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Pipeline.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		if runExport != "" {
			path, err := export.WriteFile(cfg.ExportDir, result.Leads, export.ParseFormat(runExport), time.Now())
			if err != nil {
				return err
			}
			zap.L().Info("leads exported", zap.String("path", path))
		}

		return writeJSONOut(runOut, result)
	},
}

// writeJSONOut writes v as indented JSON to path, or to stdout when path is
// empty or "-".
func writeJSONOut(path string, v any) error {
	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readLeads reads a JSON lead list, either a bare array or an object with a
// "leads" field such as a run result.
func readLeads(path string) ([]*model.LeadRecord, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read leads %s", path)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var leads []*model.LeadRecord
		if err := json.Unmarshal(data, &leads); err != nil {
			return nil, eris.Wrap(err, "parse leads")
		}
		return leads, nil
	}
	var wrapped struct {
		Leads []*model.LeadRecord `json:"leads"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, eris.Wrap(err, "parse leads")
	}
	return wrapped.Leads, nil
}

func init() {
	runFlags.register(runCmd)
	runCmd.Flags().StringVarP(&runOut, "out", "o", "", "write the JSON result to this file (default stdout)")
	runCmd.Flags().StringVar(&runExport, "export", "", "also export leads to the export dir: xlsx or csv")
	rootCmd.AddCommand(runCmd)
}
