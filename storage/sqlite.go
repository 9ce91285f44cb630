// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	_ "modernc.org/sqlite"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
)`
	sqliteGet    = `SELECT value FROM kv WHERE key = ?`
	sqliteSet    = `INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	sqliteRemove = `DELETE FROM kv WHERE key = ?`
	sqliteKeys   = `SELECT key FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`
)

// SQLiteMemory is the path which opens a private, in-memory database.
const SQLiteMemory = ":memory:"

// SQLiteBackend is a Backend persisted in a single SQLite file.  It gives
// native (non-browser) hosts the same "survives a restart" behavior a
// browser's localStorage has.
type SQLiteBackend struct {
	db     *sql.DB
	logger hclog.Logger
}

// ensure that SQLiteBackend implements the Backend interface
var _ Backend = (*SQLiteBackend)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path. Use
// SQLiteMemory for an in-memory database.
//
// See SQLiteBackend.Close() which must be called to release the database.
//
// Supported options:
//
//	WithLogger
func OpenSQLite(ctx context.Context, path string, opt ...Option) (*SQLiteBackend, error) {
	const op = "storage.OpenSQLite"
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%s: path is empty: %w", op, ErrInvalidParameter)
	}
	opts := getSQLiteOpts(opt...)

	dsn := path
	if path != SQLiteMemory {
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to open %s: %w", op, path, err)
	}
	// every connection to ":memory:" is a distinct database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w: %s", op, ErrBackendUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: unable to create schema: %w", op, err)
	}
	opts.withLogger.Debug("opened sqlite backend", "path", path)
	return &SQLiteBackend{db: db, logger: opts.withLogger}, nil
}

// Close closes the database.
func (s *SQLiteBackend) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetItem implements Backend.GetItem.
func (s *SQLiteBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	const op = "SQLiteBackend.GetItem"
	var v string
	err := s.db.QueryRowContext(ctx, sqliteGet, key).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	return v, true, nil
}

// SetItem implements Backend.SetItem.
func (s *SQLiteBackend) SetItem(ctx context.Context, key, value string) error {
	const op = "SQLiteBackend.SetItem"
	if _, err := s.db.ExecContext(ctx, sqliteSet, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RemoveItem implements Backend.RemoveItem.
func (s *SQLiteBackend) RemoveItem(ctx context.Context, key string) error {
	const op = "SQLiteBackend.RemoveItem"
	if _, err := s.db.ExecContext(ctx, sqliteRemove, key); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Keys implements Backend.Keys.
func (s *SQLiteBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	const op = "SQLiteBackend.Keys"
	rows, err := s.db.QueryContext(ctx, sqliteKeys, utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return keys, nil
}

// sqliteOptions is the set of available options for a SQLiteBackend
type sqliteOptions struct {
	withLogger hclog.Logger
}

func sqliteDefaults() sqliteOptions {
	return sqliteOptions{
		withLogger: hclog.NewNullLogger(),
	}
}

func getSQLiteOpts(opt ...Option) sqliteOptions {
	opts := sqliteDefaults()
	ApplyOpts(&opts, opt...)
	if opts.withLogger == nil {
		opts.withLogger = hclog.NewNullLogger()
	}
	return opts
}
