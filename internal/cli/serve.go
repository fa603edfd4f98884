package cli

import (
	"github.com/spf13/cobra"

	"github.com/Kavirubc/gh-riskradar/internal/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring HTTP API",
		Long: `Serve POST /v1/score, POST /v1/similar, GET /v1/stats, GET /healthz and
GET /metrics until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, proc, logger, cleanup, err := setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if addr != "" {
				cfg.Server.Addr = addr
			}
			return server.New(proc, cfg.Server, logger.Named("server")).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
