// Package sqlite provides a [profile.Store] backed by an embedded SQLite
// database, for single-node and local-development deployments where running
// PostgreSQL is not worth the operational cost.
//
// The profile document (interest vector included) is stored as a JSON text
// column; SQLite has no native vector type and this store is never queried
// by similarity.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/rumbo-ai/rumbo/pkg/profile"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id    TEXT PRIMARY KEY,
    profile    TEXT NOT NULL DEFAULT '{}',
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Store is a [profile.Store] backed by SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface check.
var _ profile.Store = (*Store)(nil)

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Pass ":memory:" for an in-memory database (used by tests).
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profile sqlite: open %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile sqlite: ping %q: %w", path, err)
	}

	// Single connection avoids "database is locked" under concurrent turns.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile sqlite: busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile sqlite: journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("profile sqlite: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get implements [profile.Store].
func (s *Store) Get(ctx context.Context, userID string) (*profile.UserProfile, error) {
	const q = `SELECT profile FROM user_profiles WHERE user_id = ?`

	var doc string
	err := s.db.QueryRowContext(ctx, q, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile sqlite: get %q: %w", userID, err)
	}

	var p profile.UserProfile
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("profile sqlite: unmarshal %q: %w", userID, err)
	}
	return &p, nil
}

// Put implements [profile.Store].
func (s *Store) Put(ctx context.Context, userID string, p *profile.UserProfile) error {
	if p == nil {
		return fmt.Errorf("profile sqlite: put %q: nil profile", userID)
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("profile sqlite: marshal %q: %w", userID, err)
	}

	const q = `
		INSERT INTO user_profiles (user_id, profile, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (user_id) DO UPDATE SET
		    profile    = excluded.profile,
		    updated_at = datetime('now')`

	if _, err := s.db.ExecContext(ctx, q, userID, string(payload)); err != nil {
		return fmt.Errorf("profile sqlite: put %q: %w", userID, err)
	}
	return nil
}
