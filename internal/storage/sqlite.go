package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
create table if not exists kv (
    key text primary key,
    value blob not null,
    updated_at timestamp not null default current_timestamp
);
`

// SQLiteStore keeps key/value records in a single sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure sqlite directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: create sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Read returns the bytes stored under key.
func (s *SQLiteStore) Read(ctx context.Context, key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("storage: key is required")
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `select value from kv where key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: sqlite read: %w", err)
	}
	return data, nil
}

// Write upserts the value under key.
func (s *SQLiteStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	_, err := s.db.ExecContext(ctx, `
insert into kv (key, value, updated_at) values (?, ?, current_timestamp)
on conflict(key) do update set value = excluded.value, updated_at = excluded.updated_at`, key, data)
	if err != nil {
		return "", fmt.Errorf("storage: sqlite write: %w", err)
	}
	return key, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
