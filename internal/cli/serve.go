package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruliana/link-community/pkg/api"
	"github.com/ruliana/link-community/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		metrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the clustering pipeline over HTTP",
		Long: `Serve runs the HTTP API:

  GET  /healthz
  POST /v1/communities   edges as JSON or text/csv, plus levels and formats
  POST /v1/similarity    edges plus the edge pairs to compare
  GET  /metrics          with --metrics or server.metrics in the config

Results are cached with the configured backend. The server shuts down
gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("metrics") {
				cfg.Metrics = metrics
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			srv := api.New(runner, cfg, loggerFromContext(ctx), c.Config.ClusterOptions()...)
			if cfg.Metrics {
				m := observability.NewMetrics(appName)
				m.Install()
				defer observability.Reset()
				srv.WithMetrics(m.Handler())
			}
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "serve Prometheus metrics on /metrics")
	return cmd
}
