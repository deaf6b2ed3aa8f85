package main

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/storyteller/internal/config"
	"github.com/cory-johannsen/storyteller/internal/game/ruleset"
	"github.com/cory-johannsen/storyteller/internal/storage"
	"github.com/cory-johannsen/storyteller/internal/storage/postgres"
	storeredis "github.com/cory-johannsen/storyteller/internal/storage/redis"
	"github.com/cory-johannsen/storyteller/internal/storage/sqlite"
)

// openStore connects the save store selected by cfg.Storage.Driver.
//
// Precondition: cfg must be validated.
// Postcondition: Returns an open store the caller must Close, or a non-nil error.
func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.DriverPostgres:
		repo, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		return repo, nil
	case config.DriverRedis:
		client, err := storeredis.NewClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		return storeredis.NewSaveRepository(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

// loadBackgrounds reads the configured background directory, or the built-in
// set when none is configured.
func loadBackgrounds(cfg config.ContentConfig) (*ruleset.BackgroundRegistry, error) {
	if cfg.BackgroundsDir == "" {
		return ruleset.DefaultBackgrounds()
	}
	return ruleset.LoadBackgrounds(cfg.BackgroundsDir)
}
