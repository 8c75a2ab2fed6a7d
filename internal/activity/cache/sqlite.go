package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2beens/fitsync/pkg"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

var _ Backend = (*SQLiteBackend)(nil)

const sqliteSlotID = 1

// SQLiteBackend persists the slot in a one-row sqlite table on the device.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := pkg.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("ensure cache dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection serializes all slot transactions
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity_cache (
			slot       INTEGER PRIMARY KEY CHECK (slot = 1),
			data       BLOB    NOT NULL,
			updated_at TEXT    NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create activity_cache table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx,
		`SELECT data FROM activity_cache WHERE slot = ?`, sqliteSlotID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select slot: %w", err)
	}
	return data, nil
}

func (b *SQLiteBackend) Update(ctx context.Context, fn func(cur []byte) ([]byte, error)) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
			return
		}
		err = tx.Commit()
	}()

	var cur []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM activity_cache WHERE slot = ?`, sqliteSlotID,
	).Scan(&cur)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("select slot: %w", err)
	}

	next, err := fn(cur)
	if err != nil {
		return err
	}

	if next == nil {
		_, err = tx.ExecContext(ctx, `DELETE FROM activity_cache WHERE slot = ?`, sqliteSlotID)
		if err != nil {
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO activity_cache (slot, data, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		sqliteSlotID, next,
	)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
