package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/contriborg/contribsync/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Performs a single contribution refresh and exits",
	Long: `Runs one full aggregation pass: checks the upstream quota, enumerates
the organization's repositories, aggregates a year of activity and
persists the classified calendar. Exits non-zero on any failure.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		cfg, err := config.Load()
		if err != nil {
			logger.WithError(err).Fatal("configuration error")
		}
		refresher, err := newRefresher(cfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("failed to build refresher")
		}
		if err := refresher.Refresh(context.Background()); err != nil {
			logger.WithError(err).Fatal("contribution refresh failed")
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
