package cmd

import (
	"github.com/spf13/cobra"

	"github.com/contriborg/contribsync/internal/config"
	"github.com/contriborg/contribsync/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP server exposing the refresh trigger",
	Long: `Serves POST /api/v1/refresh for scheduled invocation, plus /healthz
and Prometheus /metrics. A refresh responds 200 with an empty body on
success and 500 on any failure.`,
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
		srv := server.New(refresher, cfg.Addr, logger)
		if err := srv.ListenAndServe(); err != nil {
			logger.WithError(err).Fatal("server stopped")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
