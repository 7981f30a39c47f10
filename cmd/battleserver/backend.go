package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/api"
	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/game/result"
	"github.com/cory-johannsen/cardbattle/internal/storage"
	"github.com/cory-johannsen/cardbattle/internal/storage/memory"
	"github.com/cory-johannsen/cardbattle/internal/storage/postgres"
	"github.com/cory-johannsen/cardbattle/internal/storage/sqlite"
)

const healthTimeout = 2 * time.Second

// backend bundles the storage surfaces selected by storage.driver.
type backend struct {
	kv      storage.KV
	results result.Sink
	health  api.HealthFunc
	close   func()
}

func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (*backend, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory battle storage; battles do not survive a restart")
		return &backend{kv: memory.New(), close: func() {}}, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite directory: %w", err)
		}
		st, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("sqlite battle storage opened", zap.String("path", cfg.Storage.SQLitePath))
		return &backend{
			kv: st,
			close: func() {
				if err := st.Close(); err != nil {
					logger.Warn("closing sqlite", zap.Error(err))
				}
			},
		}, nil

	case config.DriverPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("connected to database", zap.Duration("elapsed", time.Since(dbStart)))
		return &backend{
			kv:      postgres.NewBattleStateRepository(pool.DB()),
			results: postgres.NewResultRepository(pool.DB()),
			health: func(ctx context.Context) error {
				return pool.Health(ctx, healthTimeout)
			},
			close: pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
