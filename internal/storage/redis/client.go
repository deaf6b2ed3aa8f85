// Package redis stores saved games in Redis, one JSON record per slot key.
package redis

import (
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/cory-johannsen/storyteller/internal/config"
)

// Client wraps goredis.UniversalClient so tests can substitute any client.
type Client interface {
	goredis.UniversalClient
}

// NewClient creates a client for a single Redis instance. Redis connects lazily;
// the first command reports an unreachable server.
//
// Precondition: cfg.Addr must be non-empty.
// Postcondition: Returns a client or a non-nil error.
func NewClient(cfg config.RedisConfig) (Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: addr is required")
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}), nil
}
