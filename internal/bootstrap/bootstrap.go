// Package bootstrap assembles the storage, feed and application components
// shared by the service binary and the operator CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotekeeper/internal/adapters/storage"
	"github.com/jsamuelsen/quotekeeper/internal/app"
	"github.com/jsamuelsen/quotekeeper/internal/platform/config"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// Components is the wired application graph.
type Components struct {
	KV         storage.Store
	Store      *app.QuoteStore
	Service    *app.QuoteService
	Feed       *acl.FeedClient
	Reconciler *app.Reconciler
	Health     *ports.DefaultHealthRegistry
}

// Options tweaks Build for a particular binary.
type Options struct {
	// Metrics receives sync and collection metrics. Nil disables them.
	Metrics *telemetry.SyncMetrics

	// UserAgent is sent on feed requests.
	UserAgent string
}

// Build opens storage, loads the collection and wires the feed and reconciler.
// The caller must Close the returned Components.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Components, error) {
	kv, err := storage.New(ctx, storage.Config{
		Driver:        cfg.Storage.Driver,
		Path:          cfg.Storage.Path,
		SQLitePath:    cfg.Storage.SQLitePath,
		RedisAddr:     cfg.Storage.RedisAddr,
		RedisPassword: cfg.Storage.RedisPassword,
		RedisDB:       cfg.Storage.RedisDB,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	store := app.NewQuoteStore(app.QuoteStoreConfig{
		KV:       kv,
		Logger:   logger,
		OnChange: opts.Metrics.SetQuotes,
	})

	if err := store.Load(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("restoring collection: %w", err), kv.Close())
	}

	// The reconciler never retries within a cycle; the next tick is the retry.
	retry := cfg.Client.Retry
	retry.MaxAttempts = 1

	httpClient, err := clients.New(&clients.Config{
		BaseURL:     cfg.Services.Feed.BaseURL,
		ServiceName: cfg.Services.Feed.Name,
		Timeout:     cfg.Client.Timeout,
		Retry:       retry,
		Circuit:     cfg.Client.CircuitBreaker,
		Transport:   cfg.Client.Transport,
		UserAgent:   opts.UserAgent,
		Logger:      logger,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("creating feed client: %w", err), kv.Close())
	}

	feed := acl.NewFeedClient(acl.FeedClientConfig{
		Client:         httpClient,
		ServiceName:    cfg.Services.Feed.Name,
		Path:           cfg.Services.Feed.PostsPath,
		FetchLimit:     cfg.Sync.FetchLimit,
		CategoryPrefix: cfg.Sync.CategoryPrefix,
		Logger:         logger,
	})

	health := ports.NewHealthRegistry()
	for _, checker := range []ports.HealthChecker{kv, feed} {
		if err := health.Register(checker); err != nil {
			return nil, errors.Join(fmt.Errorf("registering health check: %w", err), kv.Close())
		}
	}

	return &Components{
		KV:    kv,
		Store: store,
		Service: app.NewQuoteService(app.QuoteServiceConfig{
			Store:  store,
			Logger: logger,
		}),
		Feed: feed,
		Reconciler: app.NewReconciler(app.ReconcilerConfig{
			Store: store,
			Feed:  feed,
			Notifier: app.Notifiers{
				app.NewLogNotifier(logger),
				app.NewMetricsNotifier(opts.Metrics),
			},
			Logger: logger,
		}),
		Health: health,
	}, nil
}

// Close releases the storage backend.
func (c *Components) Close() error {
	return c.KV.Close()
}
