package cli

import (
	"github.com/spf13/cobra"

	"github.com/bramp/objectgraph/internal/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		listen    string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the traversal API over HTTP",
		Long: `Serve the traversal API over HTTP.

POST a JSON or TOML document to /v1/traverse to receive its report.
Reports are cached in Redis when --redis is set, and on disk otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = c.config.Listen
			}
			if !cmd.Flags().Changed("redis") {
				redisAddr = c.config.RedisAddr
			}

			ctx := cmd.Context()
			store, err := c.newServerCache(ctx, redisAddr, noCache)
			if err != nil {
				return err
			}
			defer store.Close()

			srv := server.New(server.Config{
				Cache:    store,
				CacheTTL: c.config.CacheTTL,
				MaxNodes: c.config.MaxNodes,
				Logger:   c.Logger,
			})
			return srv.ListenAndServe(ctx, listen)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "address to listen on")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "redis address for the report cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
