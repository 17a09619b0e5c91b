package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/entrypoint"
)

func newSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Write the bundled sample catalog into the database",
		Long: `Write the bundled sample catalog into the database.

Books are matched by title, so running seed again only adds titles that are
missing and never duplicates rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := entrypoint.NewServices(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer services.Close()

			created, total, err := services.Seed(cmd.Context())
			if err != nil {
				return fmt.Errorf("seed catalog: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d new book(s), %d already present (%s)\n",
				created, total-created, cfg.Database.Path)
			return nil
		},
	}
}
