package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/nfrund/dungeonwave/internal/catalog"
	"github.com/nfrund/dungeonwave/internal/config"
	"github.com/nfrund/dungeonwave/internal/database"
	"github.com/nfrund/dungeonwave/internal/game/rng"
	"github.com/nfrund/dungeonwave/internal/game/service"
	"github.com/nfrund/dungeonwave/internal/redisstore"
)

// storage bundles the state store and log sink of one backend.
type storage struct {
	store service.StateStore
	log   service.LogSink
	close func(context.Context) error
}

// openStorage connects the backend named by STORE_BACKEND.
func openStorage(ctx context.Context, cfg config.Provider, logger *slog.Logger) (*storage, error) {
	switch backend := cfg.GetStoreBackend(); backend {
	case config.BackendMemory, "":
		logger.Info("using in-memory match store")
		return &storage{
			store: database.NewMemoryStore(),
			log:   database.NewMemoryLog(),
			close: func(context.Context) error { return nil },
		}, nil

	case config.BackendSurreal:
		conn := database.NewConnection(cfg)
		if err := conn.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to surrealdb: %w", err)
		}
		conn.StartMonitoring()
		store, err := database.NewSurrealStore(conn)
		if err != nil {
			_ = conn.Close(ctx)
			return nil, err
		}
		logger.Info("using surrealdb match store", "namespace", cfg.GetDBNs(), "database", cfg.GetDBDb())
		return &storage{store: store, log: store, close: conn.Close}, nil

	case config.BackendRedis:
		rdb := redisstore.NewClient(
			redisstore.WithAddress(cfg.GetRedisAddr()),
			redisstore.WithPassword(cfg.GetRedisPassword()),
			redisstore.WithDB(cfg.GetRedisDB()),
			redisstore.WithTimeouts(cfg.GetDBQueryTimeout(), cfg.GetDBExecuteTimeout()),
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.GetRedisAddr(), err)
		}
		logger.Info("using redis match store", "addr", cfg.GetRedisAddr(), "db", cfg.GetRedisDB())
		return &storage{
			store: redisstore.NewStore(rdb),
			log:   redisstore.NewLogSink(rdb),
			close: func(context.Context) error { return rdb.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// openCatalog serves the embedded catalog, or CATALOG_DIR when set. With
// CATALOG_WATCH the directory is reloaded on change until ctx is done.
func openCatalog(ctx context.Context, cfg config.Provider, logger *slog.Logger) (catalog.Provider, error) {
	dir := cfg.GetCatalogDir()
	if dir == "" {
		cat, warnings, err := catalog.LoadDefault(ctx)
		if err != nil {
			return nil, fmt.Errorf("load embedded catalog: %w", err)
		}
		for _, w := range warnings {
			logger.Warn("catalog warning", "kind", w.Kind, "subject", w.Subject, "detail", w.Detail)
		}
		return catalog.NewStatic(cat), nil
	}

	provider, err := catalog.NewFileProvider(ctx, afero.NewOsFs(), dir, logger.With("catalog_dir", dir))
	if err != nil {
		return nil, err
	}
	if cfg.GetCatalogWatch() {
		go func() {
			if err := provider.Watch(ctx); err != nil {
				logger.Error("catalog watcher stopped", "error", err)
			}
		}()
	}
	return provider, nil
}

// rngFactory seeds every match from RNG_SEED when it is set.
func rngFactory(cfg config.Provider) rng.Factory {
	if seed := cfg.GetRNGSeed(); seed != 0 {
		return rng.Seeded(seed)
	}
	return rng.Entropy()
}
