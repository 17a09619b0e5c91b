package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/legalshelf/internal/config"
	"github.com/mrlokans/legalshelf/internal/entrypoint"
)

func newServeCmd(cfg *config.Config, version string) *cobra.Command {
	var port int32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default if no command given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				cfg.HTTP.Port = port
			}
			return runServe(cfg, version)
		},
	}

	cmd.Flags().Int32VarP(&port, "port", "p", 0, "Port to listen on (default $PORT or 8188)")

	return cmd
}

func runServe(cfg *config.Config, version string) error {
	return entrypoint.Run(cfg, version, newLogger(cfg, nil))
}
