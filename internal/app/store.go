package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jagritiyatra/alumnidex/internal/config"
	"github.com/jagritiyatra/alumnidex/internal/db"
	"github.com/jagritiyatra/alumnidex/internal/db/embedded"
	dbRedis "github.com/jagritiyatra/alumnidex/internal/db/redis"
)

// OpenStore creates the store named by cfg.Driver and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.DriverEmbedded:
		store, err = embedded.Open(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}
