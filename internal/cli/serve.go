package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/meshrules/internal/server"
)

// serveCommand creates the serve command, which starts the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest API over HTTP",
		Long: `Start the HTTP API. Cache and store backends come from the config file:
a redis_url selects the Redis cache and store.backend = "mongo" selects the
MongoDB store. The file store keeps manifests under store.dir, or the
working directory when it is empty.

Endpoints:
  GET  /healthz
  POST /v1/resolve
  POST /v1/manifest/update
  POST /v1/render
  POST /v1/import/check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, backendOpts{noCache: noCache})
			if err != nil {
				return err
			}
			defer runner.Close(ctx)

			srv := server.New(runner, c.Logger, server.Options{
				GameRoot: c.cfg.Import.GameRoot,
				DropRoot: c.cfg.Import.DropRoot,
			})
			c.Logger.Info("serving", "addr", addr, "store", c.cfg.Store.Backend)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	return cmd
}
