// Package postgres implements the store on PostgreSQL through pgx.
package postgres

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"manoLogAPI/internal/store"
)

// DB wraps a pgx pool and implements store.Store.
type DB struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*DB)(nil)

// Open connects, pings and migrates.
func Open(ctx context.Context, dbURL string) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	d := &DB{pool: pool}
	if err := d.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Println("Successfully connected to database")
	return d, nil
}

// New wraps an existing pool without migrating.
func New(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

func (d *DB) Ping(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

func (d *DB) Close() {
	d.pool.Close()
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			clerk_id TEXT UNIQUE NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS mood_logs (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			mood_type TEXT NOT NULL CHECK (mood_type IN ('angry','sad','anxious','neutral','calm','happy')),
			intensity SMALLINT NOT NULL CHECK (intensity BETWEEN 1 AND 10),
			note TEXT,
			logged_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mood_logs_user_logged_at ON mood_logs(user_id, logged_at);`,
		`CREATE TABLE IF NOT EXISTS mood_streaks (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			current_streak INT NOT NULL DEFAULT 0 CHECK (current_streak >= 0),
			longest_streak INT NOT NULL DEFAULT 0 CHECK (longest_streak >= 0),
			last_logged_date DATE,
			version BIGINT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_mood_streaks_active ON mood_streaks(user_id) WHERE current_streak > 0;`,
	}

	for _, stmt := range stmts {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
