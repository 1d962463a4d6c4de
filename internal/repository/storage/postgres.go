package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxConns = 10
	minConns = 2
)

const schema = `
CREATE TABLE IF NOT EXISTS rounds (
	id          UUID PRIMARY KEY,
	match_id    TEXT NOT NULL,
	round       INTEGER NOT NULL,
	x_name      TEXT NOT NULL,
	o_name      TEXT NOT NULL,
	winner_mark TEXT NOT NULL DEFAULT '',
	winner_name TEXT NOT NULL DEFAULT '',
	line        INTEGER[],
	moves       INTEGER NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_rounds_match_id ON rounds(match_id);
CREATE INDEX IF NOT EXISTS idx_rounds_finished_at ON rounds(finished_at);
`

// NewPostgres opens a pool, pings it and makes sure the archive schema exists.
func NewPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("can't parse database dsn: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	if err = InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("can't create tables: %w", err)
	}

	return nil
}
