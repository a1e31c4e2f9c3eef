package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	discoverFlags requestFlags
	discoverOut   string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find candidate companies without enriching them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		req, err := discoverFlags.build(cmd)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		candidates, err := env.Pipeline.Discover(ctx, req)
		if err != nil {
			return eris.Wrap(err, "discover")
		}
		zap.L().Info("discovery complete", zap.Int("candidates", len(candidates)))

		return writeJSONOut(discoverOut, map[string]any{"candidates": candidates})
	},
}

func init() {
	discoverFlags.register(discoverCmd)
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "", "write the JSON candidates to this file (default stdout)")
	rootCmd.AddCommand(discoverCmd)
}
