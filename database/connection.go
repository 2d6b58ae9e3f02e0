package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxPoolConns     = 20
	minPoolConns     = 2
	poolHealthPeriod = 30 * time.Second
	maxConnIdleTime  = 5 * time.Minute
	pingTimeout      = 5 * time.Second
	applicationName  = "dreamchain"
)

// DB wraps the pgx pool shared by repositories and units of work.
type DB struct {
	*pgxpool.Pool
}

// NewConnection opens a pool against databaseURL. Sessions run in UTC so
// donation and completion timestamps compare consistently.
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	tunePool(poolConfig)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &DB{Pool: pool}
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return db, nil
}

// tunePool only raises limits the URL left at pgx defaults.
func tunePool(cfg *pgxpool.Config) {
	if cfg.MaxConns < maxPoolConns {
		cfg.MaxConns = maxPoolConns
	}
	if cfg.MinConns < minPoolConns {
		cfg.MinConns = minPoolConns
	}
	cfg.HealthCheckPeriod = poolHealthPeriod
	cfg.MaxConnIdleTime = maxConnIdleTime

	params := cfg.ConnConfig.RuntimeParams
	params["timezone"] = "UTC"
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = applicationName
	}
}

// Ping checks the pool with a bounded wait; the health endpoint relies on it.
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases every pooled connection.
func (db *DB) Close() {
	db.Pool.Close()
}
