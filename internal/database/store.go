package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/repository"
)

// Store is an opened storage backend.
type Store struct {
	repository.Store
	// Driver names the backend, as in config.StoreDriver.
	Driver string
	Ping   func(ctx context.Context) error
	Close  func()
}

// OpenStore connects the backend selected by cfg.StoreDriver.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverSQLite:
		db, err := NewSQLite(ctx, cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		s, err := repository.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{
			Store:  s,
			Driver: config.StoreDriverSQLite,
			Ping:   db.PingContext,
			Close:  func() { _ = db.Close() },
		}, nil

	case config.StoreDriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return &Store{
			Store:  repository.NewPostgresStore(pool),
			Driver: config.StoreDriverPostgres,
			Ping:   pool.Ping,
			Close:  pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
