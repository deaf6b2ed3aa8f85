// Package postgres provides PostgreSQL persistence for saved games using pgx v5.
package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/storyteller/internal/config"
)

// Migrations holds the schema migrations applied by the migrate command.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// ErrSchemaMissing is returned when the saves table has not been migrated.
var ErrSchemaMissing = errors.New("saves table missing, run `storyteller migrate up`")

const applicationName = "storyteller"

// Pool is the connection pool shared by the save repository.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the save database. Every session runs in UTC so saved_at
// round-trips without a zone shift.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a pinged Pool or a non-nil error.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Name, err)
	}

	return &Pool{pool: pool}, nil
}

// Open connects to the save database and checks that its schema is migrated.
//
// Postcondition: Returns a repository owning its pool, or a non-nil error with
// no connections left open.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*SaveRepository, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.CheckSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return NewSaveRepository(pool), nil
}

// CheckSchema reports ErrSchemaMissing when the saves table does not exist.
func (p *Pool) CheckSchema(ctx context.Context) error {
	var present bool
	err := p.pool.QueryRow(ctx, `SELECT to_regclass('saves') IS NOT NULL`).Scan(&present)
	if err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}
	if !present {
		return ErrSchemaMissing
	}
	return nil
}

// Health checks that the database answers within timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.pool.Ping(ctx)
}

// Close releases every connection.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
