package app

import (
	"context"
	"fmt"

	"github.com/socialcosmos/backend/internal/auth"
	"github.com/socialcosmos/backend/internal/config"
	"github.com/socialcosmos/backend/internal/db"
	"github.com/socialcosmos/backend/internal/handlers"
	"github.com/socialcosmos/backend/internal/logging"
	"github.com/socialcosmos/backend/internal/metrics"
	"github.com/socialcosmos/backend/internal/middleware"
	"github.com/socialcosmos/backend/internal/repositories"
	"github.com/socialcosmos/backend/internal/social"
	"github.com/socialcosmos/backend/internal/storage"
)

// backendSet is the collection backend chosen by configuration together with
// the session store that matches it.
type backendSet struct {
	documents storage.Backend
	sessions  auth.SessionStore
	close     func()
}

// openBackends selects the collection and session persistence for cfg.Storage.
func openBackends(ctx context.Context, cfg config.Config) (backendSet, error) {
	set := backendSet{sessions: auth.NewInMemorySessionStore(), close: func() {}}

	switch cfg.Storage {
	case config.StorageFile:
		backend, err := storage.NewFileBackend(cfg.DataDir)
		if err != nil {
			return backendSet{}, err
		}
		set.documents = backend
	case config.StorageMemory:
		set.documents = storage.NewMemoryBackend()
	case config.StorageS3:
		backend, err := storage.NewS3Backend(ctx, cfg.ObjectStore)
		if err != nil {
			return backendSet{}, err
		}
		set.documents = backend
	case config.StoragePostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns)
		if err != nil {
			return backendSet{}, err
		}
		set.documents = repositories.NewPostgresDocumentStore(pool)
		set.sessions = repositories.NewPostgresSessionStore(pool)
		set.close = pool.Close
	default:
		return backendSet{}, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}

	return set, nil
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, cfg config.Config, collector *metrics.Collector) (handlers.Dependencies, func(), error) {
	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	backends, err := openBackends(ctx, cfg)
	if err != nil {
		return handlers.Dependencies{}, nil, err
	}

	store, err := social.Open(ctx, backends.documents, collector, social.WithBcryptCost(cfg.BcryptCost))
	if err != nil {
		backends.close()
		return handlers.Dependencies{}, nil, fmt.Errorf("open social store: %w", err)
	}

	logging.FromContext(ctx).Info("social store loaded", "storage", cfg.Storage, "users", len(store.ListUsers(ctx)))

	limit := cfg.AuthRateLimit
	deps := handlers.Dependencies{
		Store:          store,
		Sessions:       auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, backends.sessions),
		Metrics:        collector,
		AuthLimiter:    middleware.NewKeyedRateLimiter(limit.Requests, limit.Window, limit.Burst, 10*limit.Window),
		TrustedProxies: proxies,
	}
	return deps, backends.close, nil
}
