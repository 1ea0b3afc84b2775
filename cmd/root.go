// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/contriborg/contribsync/internal/config"
	"github.com/contriborg/contribsync/internal/gateway"
	"github.com/contriborg/contribsync/internal/store"
	"github.com/contriborg/contribsync/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "contribsync",
	Short: "Maintains a GitHub organization's contribution calendar.",
	Long: `contribsync aggregates commits, pull requests and issues across all
repositories of a GitHub organization into a rolling one-year contribution
calendar and persists the result to the site metadata store.
All configuration is read from the process environment.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger builds the shared logger, honoring the root --verbose flag.
func newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// newRefresher wires the gateway, store and use case from configuration.
func newRefresher(cfg *config.Config, logger *logrus.Logger) (*usecase.Refresher, error) {
	githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, logger)
	if err != nil {
		return nil, err
	}
	metadataStore := store.NewNetlify(cfg.StoreURL, cfg.NetlifySiteID, cfg.NetlifyToken, logger)
	return usecase.NewRefresher(githubGateway, metadataStore, cfg.GitHubOrg, logger), nil
}
