package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odex-dev/odex/pkg/cache"
	"github.com/odex-dev/odex/pkg/catalog"
	"github.com/odex-dev/odex/pkg/pipeline"
	"github.com/odex-dev/odex/pkg/server"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		redisAddr string
		mongoURI  string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the exploration pipeline over HTTP",
		Long: `Expose the exploration pipeline over HTTP.

Endpoints:
  GET  /healthz               liveness probe
  GET  /api/metadata?url=     fetch and summarize $metadata
  POST /api/layout            annotate a topology, or run the full pipeline
  POST /api/query             run an OData query
  GET  /api/services          list explored services
  DELETE /api/services?url=   forget a service

With --redis the cache is shared across instances; with --mongo the service
catalog is persisted. Both default to in-process storage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, redisAddr, mongoURI, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for shared caching (e.g. localhost:6379)")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for the service catalog (e.g. mongodb://localhost:27017)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, redisAddr, mongoURI string, noCache bool) error {
	store, err := c.serveCache(ctx, redisAddr, noCache)
	if err != nil {
		return err
	}

	cat, err := c.serveCatalog(ctx, mongoURI)
	if err != nil {
		return err
	}
	defer cat.Close(context.Background())

	srv := server.New(server.Options{
		Addr:    addr,
		Runner:  pipeline.NewRunner(store, nil, c.Logger),
		Catalog: cat,
		Logger:  c.Logger,
	})
	return srv.Start(ctx)
}

// serveCache picks the server cache backend: Redis when configured, memory
// otherwise. The file cache stays CLI-only since concurrent server workers
// would contend on it.
func (c *CLI) serveCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	switch {
	case noCache:
		return cache.NewNullCache(), nil
	case redisAddr != "":
		store, err := cache.NewRedisCache(ctx, redisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.Logger.Info("using redis cache", "addr", redisAddr)
		return store, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

func (c *CLI) serveCatalog(ctx context.Context, mongoURI string) (catalog.Store, error) {
	if mongoURI == "" {
		return catalog.NewMemoryStore(), nil
	}
	store, err := catalog.NewMongoStore(ctx, catalog.MongoConfig{URI: mongoURI})
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.Logger.Info("using mongodb catalog", "uri", mongoURI)
	return store, nil
}
