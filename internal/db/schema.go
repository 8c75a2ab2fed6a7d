package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "activity_daily",
		sql: `
CREATE TABLE IF NOT EXISTS activity_daily (
    user_id      TEXT             NOT NULL,
    day          DATE             NOT NULL,
    steps        BIGINT           NOT NULL DEFAULT 0 CHECK (steps >= 0),
    distance_km  DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (distance_km >= 0),
    calories     BIGINT           NOT NULL DEFAULT 0 CHECK (calories >= 0),
    last_updated TIMESTAMPTZ      NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, day)
);`,
	},
	{
		version: 2,
		name:    "activity_flush",
		sql: `
CREATE TABLE IF NOT EXISTS activity_flush (
    flush_id    UUID        PRIMARY KEY,
    user_id     TEXT        NOT NULL,
    day         DATE        NOT NULL,
    steps       BIGINT      NOT NULL,
    distance_km DOUBLE PRECISION NOT NULL,
    calories    BIGINT      NOT NULL,
    applied_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS activity_flush_user_day_idx ON activity_flush (user_id, day);`,
	},
	{
		version: 3,
		name:    "objective",
		sql: `
CREATE TABLE IF NOT EXISTS objective (
    id         SERIAL PRIMARY KEY,
    user_id    TEXT             NOT NULL,
    type       TEXT             NOT NULL CHECK (type IN ('steps', 'calories', 'distance')),
    value      DOUBLE PRECISION NOT NULL CHECK (value >= 0),
    created_at TIMESTAMPTZ      NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS objective_user_idx ON objective (user_id, created_at);`,
	},
}

// Migrate applies all not yet applied schema migrations, in order.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT        NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, m := range migrations {
		var applied bool
		if err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, m.version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %d: %w", m.version, err)
		}
		if applied {
			continue
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(ctx, m.sql); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.version, m.name,
		); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
		log.Debugf("db migration applied: %d %s", m.version, m.name)
	}

	return nil
}
