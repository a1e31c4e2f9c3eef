package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/model"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the reference project profile cache",
}

var profileForce bool

var profileBuildCmd = &cobra.Command{
	Use:   "build <reference-url>",
	Short: "Build (or load from cache) the project profile of a reference company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		p, err := env.Pipeline.BuildProfile(ctx, model.Credentials{}, args[0], profileForce)
		if err != nil {
			return eris.Wrap(err, "build profile")
		}
		return writeJSONOut("", p)
	},
}

var profilePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached profiles older than the TTL",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Profiles.Purge(ctx)
		if err != nil {
			return eris.Wrap(err, "purge profiles")
		}
		zap.L().Info("expired profiles purged", zap.Int("purged", n))
		fmt.Printf("purged %d profiles (ttl %d days)\n", n, int(env.Profiles.TTL()/(24*time.Hour)))
		return nil
	},
}

var profileFlushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Delete every cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		n, err := env.Profiles.Flush(ctx)
		if err != nil {
			return eris.Wrap(err, "flush profiles")
		}
		zap.L().Info("profile cache flushed", zap.Int("deleted", n))
		fmt.Printf("deleted %d profiles\n", n)
		return nil
	},
}

func init() {
	profileBuildCmd.Flags().BoolVar(&profileForce, "force", false, "ignore the cached profile")
	profileCmd.AddCommand(profileBuildCmd, profilePurgeCmd, profileFlushCmd)
	rootCmd.AddCommand(profileCmd)
}
