package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps feed bytes in a single key/value table so several
// service replicas can share one cache.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and ensures the cache
// table exists.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %v", err)
	}

	store := &PostgresStore{Pool: pool}
	if err := store.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS feed_cache (
            key        TEXT PRIMARY KEY,
            body       BYTEA NOT NULL,
            updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
        )
    `)
	return err
}

// Set overwrites the entry in place; previous bytes stay readable until
// the upsert commits.
func (s *PostgresStore) Set(ctx context.Context, key string, body []byte) error {
	_, err := s.Pool.Exec(ctx, `
        INSERT INTO feed_cache (key, body, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
    `, key, body)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := s.Pool.QueryRow(ctx, `
        SELECT body FROM feed_cache WHERE key = $1
    `, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	s.Pool.Close()
}
