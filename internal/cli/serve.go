package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/boxlayout/internal/server"
	"github.com/matzehuels/boxlayout/pkg/store"
)

// serveCommand creates the serve command for the HTTP service.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout pipeline over HTTP",
		Long: `Serve exposes compile and render over HTTP. Archived layouts are kept
in memory, or in MongoDB when a URI is configured.`,
		Example: `  boxlayout serve --addr :8080
  curl --data-binary @toolbar.box 'localhost:8080/v1/render?width=200&format=png'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.Config.Serve.Addr
			}
			if mongoURI == "" {
				mongoURI = c.Config.Serve.MongoURI
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var st store.Store = store.NewMemory()
			if mongoURI != "" {
				m, err := store.NewMongo(ctx, mongoURI, c.Config.Serve.MongoDatabase)
				if err != nil {
					return err
				}
				st = m
				c.Logger.Info("archiving layouts in mongo", "database", c.Config.Serve.MongoDatabase)
			}
			defer st.Close(context.WithoutCancel(ctx))

			srv := server.New(runner, st,
				server.WithLogger(c.Logger),
				server.WithSolveLimit(c.Config.Serve.SolveRate, c.Config.Serve.SolveBurst))
			printInfo("Listening on %s", addr)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for the layout archive")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the cache")

	return cmd
}
