// Package postgres provides a [profile.Store] backed by PostgreSQL.
//
// The profile document is stored as JSONB; the interest vector is kept in a
// separate pgvector column so the same row can serve vector queries without
// re-parsing JSON. Requires the pgvector extension.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/rumbo-ai/rumbo/pkg/profile"
)

// Schema is the SQL DDL for the user_profiles table. Execute it via
// [Store.Migrate] or apply it manually during deployment. The vector
// dimension placeholder is filled in by Migrate.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;
CREATE TABLE IF NOT EXISTS user_profiles (
    user_id          TEXT PRIMARY KEY,
    profile          JSONB NOT NULL DEFAULT '{}',
    interest_vector  vector(%d),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// DB is the database interface used by [Store]. Both *pgxpool.Pool and
// *pgx.Conn satisfy this interface.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is a [profile.Store] backed by a PostgreSQL database.
// All methods are safe for concurrent use when the underlying DB is.
type Store struct {
	db   DB
	dims int
}

// Compile-time interface check.
var _ profile.Store = (*Store)(nil)

// New creates a Store using the given connection or pool. dims is the
// embedding dimension of the interest_vector column and must match the
// configured embeddings provider. The caller is responsible for calling
// [Store.Migrate] before issuing queries.
func New(db DB, dims int) (*Store, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("profile postgres: dims must be positive, got %d", dims)
	}
	return &Store{db: db, dims: dims}, nil
}

// Migrate executes the [Schema] DDL, creating the user_profiles table if it
// does not already exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(Schema, s.dims)); err != nil {
		return fmt.Errorf("profile postgres: migrate: %w", err)
	}
	return nil
}

// Get implements [profile.Store].
func (s *Store) Get(ctx context.Context, userID string) (*profile.UserProfile, error) {
	const q = `
		SELECT profile, interest_vector
		FROM   user_profiles
		WHERE  user_id = $1`

	var (
		doc []byte
		vec *pgvector.Vector
	)
	err := s.db.QueryRow(ctx, q, userID).Scan(&doc, &vec)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, profile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile postgres: get %q: %w", userID, err)
	}

	var p profile.UserProfile
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("profile postgres: unmarshal %q: %w", userID, err)
	}
	if vec != nil {
		p.InterestVector = vec.Slice()
	}
	return &p, nil
}

// Put implements [profile.Store]. The interest vector is stored in its own
// column and stripped from the JSONB document to avoid double bookkeeping.
func (s *Store) Put(ctx context.Context, userID string, p *profile.UserProfile) error {
	if p == nil {
		return fmt.Errorf("profile postgres: put %q: nil profile", userID)
	}

	doc := p.Clone()
	vec := doc.InterestVector
	doc.InterestVector = nil

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("profile postgres: marshal %q: %w", userID, err)
	}

	var vecArg any
	if vec != nil {
		if len(vec) != s.dims {
			return fmt.Errorf("profile postgres: put %q: vector dimension %d, column expects %d", userID, len(vec), s.dims)
		}
		vecArg = pgvector.NewVector(vec)
	}

	const q = `
		INSERT INTO user_profiles (user_id, profile, interest_vector, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET
		    profile         = EXCLUDED.profile,
		    interest_vector = EXCLUDED.interest_vector,
		    updated_at      = now()`

	if _, err := s.db.Exec(ctx, q, userID, payload, vecArg); err != nil {
		return fmt.Errorf("profile postgres: put %q: %w", userID, err)
	}
	return nil
}
