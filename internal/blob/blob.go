// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// schema is applied on open; the store is a single key/value table.
const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	id         TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// ErrClosed indicates the store was used after Close.
var ErrClosed = errors.New("blob store is closed")

// =============================================================================
// BLOB STORE
// =============================================================================

// Store is a key/value store for audio blobs backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the blob database at the given path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob database: %w", err)
	}

	// A single writer keeps SQLite happy without WAL tuning; blob traffic
	// is one write per recording.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply blob schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// =============================================================================
// CONTRACT METHODS
// =============================================================================

// SetItem stores data under key. Failures are logged, never returned;
// the send pipeline must not fail a message because persistence hiccuped.
func (s *Store) SetItem(ctx context.Context, key string, data []byte) {
	if s.db == nil {
		log.Printf("ERROR: blob write %s: %v", key, ErrClosed)
		return
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (id, data, created_at) VALUES (?, ?, ?)`,
		key, data, time.Now().Unix())
	if err != nil {
		log.Printf("ERROR: failed to save blob %s: %v", key, err)
		return
	}

	log.Printf("saved audio blob, audioId: %s (%d bytes)", key, len(data))
}

// GetItem returns the blob stored under key.
//
// ok is false both when the key is absent and when the read failed; only
// the failure case is logged, so the two remain distinguishable to the
// operator while callers treat both as "no data".
func (s *Store) GetItem(ctx context.Context, key string) (data []byte, ok bool) {
	if s.db == nil {
		log.Printf("ERROR: blob read %s: %v", key, ErrClosed)
		return nil, false
	}

	row := s.db.QueryRowContext(ctx, `SELECT data FROM blobs WHERE id = ?`, key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Expected after restoring from an export without payloads.
			return nil, false
		}
		log.Printf("ERROR: failed to read blob %s: %v", key, err)
		return nil, false
	}

	return data, true
}

// DeleteItem removes the blob stored under key. Used when a chat deletion
// cascades to the audio its messages referenced. Failures are logged.
func (s *Store) DeleteItem(ctx context.Context, key string) {
	if s.db == nil {
		log.Printf("ERROR: blob delete %s: %v", key, ErrClosed)
		return
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE id = ?`, key); err != nil {
		log.Printf("ERROR: failed to delete blob %s: %v", key, err)
	}
}

// Count returns the number of stored blobs, for diagnostics.
func (s *Store) Count(ctx context.Context) int {
	if s.db == nil {
		return 0
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blobs`).Scan(&n); err != nil {
		log.Printf("ERROR: failed to count blobs: %v", err)
		return 0
	}
	return n
}
