package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresSnapshots struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to dsn, verifies the connection and makes sure the snapshots table exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSnapshots, error) {
	op := "storage.OpenPostgres"

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to connect: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: unable to ping: %w", op, err)
	}

	s := NewPostgresSnapshots(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func NewPostgresSnapshots(pool *pgxpool.Pool) *PostgresSnapshots {
	return &PostgresSnapshots{
		pool: pool,
	}
}

func (s *PostgresSnapshots) EnsureSchema(ctx context.Context) error {
	op := "storage.PostgresSnapshots.EnsureSchema"

	sql_query := `
	CREATE TABLE IF NOT EXISTS snapshots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
	`

	if _, err := s.pool.Exec(ctx, sql_query); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *PostgresSnapshots) Get(ctx context.Context, key string) ([]byte, error) {
	op := "storage.PostgresSnapshots.Get"

	sql_query := `
	SELECT value FROM snapshots
	WHERE key = $1
	`

	var value string
	err := s.pool.QueryRow(ctx, sql_query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return []byte(value), nil
}

func (s *PostgresSnapshots) Put(ctx context.Context, key string, value []byte) error {
	op := "storage.PostgresSnapshots.Put"

	sql_query := `
	INSERT INTO snapshots (key, value, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, sql_query, key, string(value)); err != nil {
		return fmt.Errorf("%s: failed to save snapshot: %w", op, err)
	}
	return nil
}

func (s *PostgresSnapshots) Close() error {
	s.pool.Close()
	return nil
}
