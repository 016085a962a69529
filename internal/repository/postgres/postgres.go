// Package postgres implements the user repository backed by PostgreSQL
// using pgx. It is selected at startup when DATABASE_URL is set; otherwise
// the service runs on the embedded SQLite backend.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool and implements
// repository.UserRepository.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to the database at databaseURL and ensures the schema
// exists.
//
// pgxpool defaults to a bounded pool (max conns = max(4, NumCPU));
// callers queue when it is exhausted. Tune via pool_max_conns in the URL,
// e.g. "postgres://...?pool_max_conns=10".
func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}

	if err := db.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ensuring schema: %w", err)
	}

	return db, nil
}

// Close drains and closes the connection pool.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

// ensureSchema creates the users table if it is missing.
//
// The constraint names (users_username_key, users_email_key) matter:
// user.go maps them back to the colliding field when an insert hits a
// unique violation.
func (db *DB) ensureSchema(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			updated_at    TIMESTAMPTZ NOT NULL,
			CONSTRAINT users_username_key UNIQUE (username),
			CONSTRAINT users_email_key UNIQUE (email)
		);
	`)
	return err
}
