package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/laneflow/laneflow/pkg/cache"
	"github.com/laneflow/laneflow/pkg/pipeline"
	"github.com/laneflow/laneflow/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		redisURL string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the laneflow HTTP API",
		Long: `Run the laneflow HTTP API.

POST triple text to /v1/diagrams?format=drawio to receive a rendered
diagram, or to /v1/graphs for the reconstructed process graph as JSON.

By default results are cached on the local filesystem. Pass --redis to
share the cache between instances.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisURL, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8420", "listen address")
	cmd.Flags().StringVar(&redisURL, "redis", "", "redis URL for a shared cache (e.g. redis://localhost:6379/0)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisURL string, noCache bool) error {
	store, err := c.serveCache(ctx, redisURL, noCache)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	srv := server.NewServer(server.Config{
		Addr:   addr,
		Runner: runner,
		Logger: c.Logger,
	})

	return srv.ListenAndServe(ctx)
}

// serveCache picks the cache backend for serve mode: redis when a URL is
// given, the local file cache otherwise.
func (c *CLI) serveCache(ctx context.Context, redisURL string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		store, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache")
		return store, nil
	}
	return newCache(false)
}
