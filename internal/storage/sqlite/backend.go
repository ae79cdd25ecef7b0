// Package sqlite provides a SQLite document backend for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/aicardgame-go/internal/storage/document"
	"github.com/mcoot/aicardgame-go/internal/storage/sqlite/migrations"
)

// Backend persists documents in a single SQLite table
type Backend struct {
	db *sql.DB
}

// Open opens the database at path and applies embedded migrations
func Open(path string) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Backend{db: db}, nil
}

// OpenStore opens a backend and wraps it as a storage.Storage
func OpenStore(path string) (*document.Store, error) {
	backend, err := Open(path)
	if err != nil {
		return nil, err
	}
	return document.New(backend), nil
}

var _ document.Backend = (*Backend)(nil)

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, document.ErrNotFound
	}
	return value, err
}

func (b *Backend) Put(ctx context.Context, kind, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO documents (key, kind, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, value = excluded.value, updated_at = excluded.updated_at`,
		key, kind, value, time.Now().UTC().UnixMilli(),
	)
	return err
}

func (b *Backend) Delete(ctx context.Context, key string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	return err
}

func (b *Backend) List(ctx context.Context, kind string) ([][]byte, error) {
	rows, err := b.db.QueryContext(ctx, `SELECT value FROM documents WHERE kind = ? ORDER BY key`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}

// Close closes the SQLite handle
func (b *Backend) Close() error {
	return b.db.Close()
}
