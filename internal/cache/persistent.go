// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Persistent is a disk-backed cache keyed by namespace and key. Values are
// opaque bytes; the repositories store JSON.
type Persistent interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Put(ctx context.Context, namespace, key string, value []byte) error
	Remove(ctx context.Context, namespace, key string) error
	RemoveNamespace(ctx context.Context, namespace string) error
}

// Stats reports persistent cache activity.
type Stats struct {
	Entries int64
	Hits    int64
	Misses  int64
}

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	namespace    TEXT    NOT NULL,
	key          TEXT    NOT NULL,
	value        BLOB    NOT NULL,
	created_unix INTEGER NOT NULL,
	ttl_nanos    INTEGER NOT NULL,
	PRIMARY KEY (namespace, key)
);
`

// SQLiteStore is a Persistent cache in a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	hits   atomic.Int64
	misses atomic.Int64
}

// OpenSQLite opens (creating if needed) the cache database at path.
// Entries written through the store expire after ttl.
func OpenSQLite(path string, ttl time.Duration) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure cache db: %w", err)
		}
	}

	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &SQLiteStore{db: db, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source. Intended for tests.
func (s *SQLiteStore) WithClock(now func() time.Time) *SQLiteStore {
	s.now = now
	return s
}

// Get returns the value stored under (namespace, key) if it has not expired.
func (s *SQLiteStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	var (
		value   []byte
		created int64
		ttl     int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, created_unix, ttl_nanos FROM cache_entries WHERE namespace = ? AND key = ?`,
		namespace, key,
	).Scan(&value, &created, &ttl)
	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		s.misses.Add(1)
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	if s.now().Sub(time.Unix(0, created)) >= time.Duration(ttl) {
		s.misses.Add(1)
		return nil, false, nil
	}

	s.hits.Add(1)
	return value, true, nil
}

// Put stores value under (namespace, key), replacing any previous value.
func (s *SQLiteStore) Put(ctx context.Context, namespace, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (namespace, key, value, created_unix, ttl_nanos)
		 VALUES (?, ?, ?, ?, ?)`,
		namespace, key, value, s.now().UnixNano(), int64(s.ttl),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Remove deletes the entry for (namespace, key).
func (s *SQLiteStore) Remove(ctx context.Context, namespace, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cache_entries WHERE namespace = ? AND key = ?`, namespace, key)
	if err != nil {
		return fmt.Errorf("cache remove: %w", err)
	}
	return nil
}

// RemoveNamespace deletes every entry in namespace.
func (s *SQLiteStore) RemoveNamespace(ctx context.Context, namespace string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE namespace = ?`, namespace)
	if err != nil {
		return fmt.Errorf("cache remove namespace: %w", err)
	}
	return nil
}

// Clear removes entries. If expiredOnly is true only expired entries go.
func (s *SQLiteStore) Clear(ctx context.Context, expiredOnly bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if expiredOnly {
		res, err = s.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE created_unix + ttl_nanos <= ?`, s.now().UnixNano())
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	}
	if err != nil {
		return 0, fmt.Errorf("cache clear: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats returns the entry count and hit/miss counters since open.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return Stats{
		Entries: count,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
