package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xdsmgen/internal/server"
	"github.com/matzehuels/xdsmgen/pkg/cache"
	"github.com/matzehuels/xdsmgen/pkg/pipeline"
)

type serveOpts struct {
	addr          string
	cache         string
	cachePrefix   string
	maxBody       int64
	renderTimeout time.Duration
}

func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:          ":8080",
		cache:         "file",
		cachePrefix:   appName + ":",
		maxBody:       server.DefaultMaxBodySize,
		renderTimeout: 2 * time.Minute,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Cache backends:
  file                   local file cache (default)
  none                   no caching
  redis://host:6379/0    Redis
  mongodb://host:27017   MongoDB`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.cache, "cache", opts.cache, "cache backend: file, none, redis://..., mongodb://...")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", opts.cachePrefix, "namespace for cache keys on a shared backend")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body in bytes")
	cmd.Flags().DurationVar(&opts.renderTimeout, "render-timeout", opts.renderTimeout, "timeout for a single render")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	store, err := openCache(ctx, opts.cache)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.cachePrefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.cachePrefix)
	}
	runner := pipeline.NewRunner(store, keyer, c.Logger)
	defer runner.Close()

	srv, err := server.New(server.Config{
		Addr:          opts.addr,
		MaxBodySize:   opts.maxBody,
		RenderTimeout: opts.renderTimeout,
	}, runner, c.Logger)
	if err != nil {
		return err
	}

	c.Logger.Info("starting server", "addr", opts.addr, "cache", opts.cache)
	return srv.ListenAndServe(ctx)
}
