package career

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgvector "github.com/pgvector/pgvector-go"
)

// Index is the write-once, in-memory career corpus: every [Record] with its
// embedding, in stable ingestion order. Construct one with [NewIndex],
// [LoadFile], or [LoadPostgres]; after construction it must not be mutated
// and is safe for unsynchronized concurrent reads.
type Index struct {
	records []Record
	dims    int
}

// NewIndex validates records and builds an Index. It fails when the corpus
// is empty, when any record is missing an embedding, or when embedding
// dimensions are inconsistent — an unusable corpus is a startup error, never
// a per-query one.
func NewIndex(records []Record) (*Index, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("career: index: corpus is empty")
	}
	dims := len(records[0].Embedding)
	if dims == 0 {
		return nil, fmt.Errorf("career: index: record %q has no embedding", records[0].ID)
	}
	for _, r := range records {
		if len(r.Embedding) != dims {
			return nil, fmt.Errorf("career: index: record %q has %d dimensions, corpus has %d",
				r.ID, len(r.Embedding), dims)
		}
	}
	return &Index{records: records, dims: dims}, nil
}

// All returns the full corpus in stable ingestion order. The returned slice
// is the index's backing store — callers must not modify it.
func (ix *Index) All() []Record {
	return ix.records
}

// Len returns the number of records in the corpus.
func (ix *Index) Len() int {
	return len(ix.records)
}

// Dimensions returns the embedding dimension shared by every record.
func (ix *Index) Dimensions() int {
	return ix.dims
}

// artifact is the on-disk JSON layout produced by the offline ingestion
// pipeline: parallel arrays of metadata and embeddings, index-aligned.
type artifact struct {
	Careers    []Record    `json:"careers"`
	Embeddings [][]float32 `json:"embeddings"`
}

// LoadFile reads a corpus artifact from path and builds an [Index].
//
// The artifact holds parallel arrays: careers[i] is described by
// embeddings[i]. A missing file, empty corpus, or length mismatch between
// the arrays fails the load. Records without an ID are assigned one, so
// hand-built artifacts for development do not need to invent identifiers.
func LoadFile(path string) (*Index, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("career: load %q: %w", path, err)
	}

	var a artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("career: parse %q: %w", path, err)
	}
	if len(a.Careers) != len(a.Embeddings) {
		return nil, fmt.Errorf("career: load %q: %d careers but %d embeddings",
			path, len(a.Careers), len(a.Embeddings))
	}

	for i := range a.Careers {
		a.Careers[i].Embedding = a.Embeddings[i]
		if a.Careers[i].ID == "" {
			a.Careers[i].ID = uuid.NewString()
		}
	}
	return NewIndex(a.Careers)
}

// pgDB is the subset of pgx connection behaviour needed by [LoadPostgres].
// Both *pgxpool.Pool and *pgx.Conn satisfy it.
type pgDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// LoadPostgres loads the corpus from the careers database populated by the
// ingestion pipeline: one row per program joined with its university, with
// the embedding in a pgvector column.
func LoadPostgres(ctx context.Context, db pgDB) (*Index, error) {
	const q = `
		SELECT c.id, c.career_name, c.faculty_name, c.description, c.duration,
		       c.modality, c.cost, c.career_url, c.image_url, c.embedding,
		       u.name, u.city, u.is_public
		FROM   careers c
		JOIN   universities u ON c.university_id = u.id
		ORDER  BY c.id`

	rows, err := db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("career: load postgres: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var (
			r   Record
			vec pgvector.Vector
		)
		if err := row.Scan(
			&r.ID,
			&r.Name,
			&r.Faculty,
			&r.Description,
			&r.Duration,
			&r.Modality,
			&r.Cost,
			&r.URL,
			&r.ImageURL,
			&vec,
			&r.University,
			&r.City,
			&r.IsPublicUniversity,
		); err != nil {
			return Record{}, err
		}
		r.Embedding = vec.Slice()
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("career: load postgres: scan rows: %w", err)
	}
	return NewIndex(records)
}
