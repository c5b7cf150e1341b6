// Package cmd implements the docchat command line interface.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/docchat/docchat/internal/config"
	"github.com/docchat/docchat/internal/log"
)

var (
	flagOwner   string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "docchat - chat with your documents",
	Long: `docchat ingests PDF documents into searchable knowledge bases and
grounds chat replies in their content.

Ingest a document, then query or chat against the returned knowledge
base id.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagOwner, "owner", "local",
		"owner id to scope knowledge bases and sessions to")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false,
		"enable debug logging")
}

// loadConfig loads and validates configuration for a command run.
func loadConfig() (*config.Config, error) {
	return config.Load()
}

// newLogger builds the process logger from flags.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}
