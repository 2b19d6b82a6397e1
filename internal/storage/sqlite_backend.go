package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"livenotes/internal/storage/interfaces"
)

const SqliteBackendName = "sqlite"

type SqliteBackend struct {
	db         *sql.DB
	path       string
	quotaBytes uint64
}

func OpenSqliteBackend(ctx context.Context, path string, quotaBytes uint64) (*SqliteBackend, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}

	return &SqliteBackend{db: db, path: path, quotaBytes: quotaBytes}, nil
}

func (sb *SqliteBackend) Name() string {
	return SqliteBackendName
}

func (sb *SqliteBackend) Get(ctx context.Context, key, def string) (string, error) {
	var value string
	err := sb.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, nil
}

func (sb *SqliteBackend) Set(ctx context.Context, key, value string) error {
	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

func (sb *SqliteBackend) Delete(ctx context.Context, key string) error {
	if _, err := sb.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("sqlite delete %s: %w", key, err)
	}
	return nil
}

// Usage reports page_count * page_size of the database file.
func (sb *SqliteBackend) Usage(ctx context.Context) (interfaces.Usage, error) {
	var pages, pageSize uint64
	if err := sb.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pages); err != nil {
		return interfaces.Usage{}, fmt.Errorf("sqlite page_count: %w", err)
	}
	if err := sb.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return interfaces.Usage{}, fmt.Errorf("sqlite page_size: %w", err)
	}
	return interfaces.Usage{UsedBytes: pages * pageSize, QuotaBytes: sb.quotaBytes}, nil
}

func (sb *SqliteBackend) Close() error {
	return sb.db.Close()
}
