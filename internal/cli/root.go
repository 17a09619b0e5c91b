// Package cli holds the legalshelf command line.
package cli

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/logger"
)

// NewRootCmd creates the root command. Without a subcommand it serves HTTP.
func NewRootCmd(version string) *cobra.Command {
	cfg := config.NewConfig()
	var dbPath string

	root := &cobra.Command{
		Use:   "legalshelf",
		Short: "Legal library service",
		Long: `Browse a catalog of law books, keep favorites, notes and reading
progress per reader, and ask the assistant about a book.

Configuration comes from the environment (PORT, DATABASE_PATH, AI_ENDPOINT,
LOG_LEVEL, ...). Flags override it.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if dbPath != "" {
				cfg.Database.Path = dbPath
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg, version)
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the sqlite database (default $DATABASE_PATH or "+config.DefaultDatabasePath+")")

	root.AddCommand(newServeCmd(cfg, version))
	root.AddCommand(newSeedCmd(cfg))
	root.AddCommand(newSearchCmd(cfg))

	return root
}

// newLogger installs the global logger. Commands that print results log to
// stderr so stdout stays parseable.
func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	log := logger.New(cfg.Log, w)
	logger.SetGlobal(log)
	return log
}
