// Package database owns the Postgres connection pool and schema migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hray3182/datekeeper/internal/logging"
)

type DB struct {
	Pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to uri and verifies the connection before returning.
func New(ctx context.Context, uri string, logger *slog.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database uri: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, logger: logging.OrDiscard(logger)}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
