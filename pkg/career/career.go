// Package career holds the static corpus of academic programs and the
// retrieval logic that ranks them against a user's interest vector.
//
// The corpus is produced offline (scraping and document-extraction pipelines
// outside this repository) and loaded exactly once at process start, either
// from a JSON artifact ([LoadFile]) or from the careers database
// ([LoadPostgres]). After loading, the [Index] is immutable and is read
// concurrently by all retrieval calls without locking.
package career

import "errors"

// ErrInsufficientProfile is returned by [Retriever.Retrieve] when no interest
// vector exists yet — retrieval on a user's very first contact has nothing to
// rank by, and arbitrary results would be worse than none. The orchestrator
// handles this by skipping retrieval for that turn.
var ErrInsufficientProfile = errors.New("career: insufficient profile: no interest vector yet")

// Record is one academic program in the corpus. Immutable for the process
// lifetime.
type Record struct {
	// ID is an opaque, stable identifier assigned by the ingestion pipeline.
	ID string `json:"id"`

	// Name is the program's display name (e.g., "Ingeniería en Sistemas").
	Name string `json:"name"`

	// Faculty is the faculty or knowledge area the program belongs to.
	Faculty string `json:"faculty,omitempty"`

	// University is the owning institution's display name.
	University string `json:"university"`

	// City is the city where the program is offered.
	City string `json:"city,omitempty"`

	// Modality is the delivery modality ("presencial", "en linea", "hibrida").
	Modality string `json:"modality,omitempty"`

	// IsPublicUniversity reports whether the owning institution is public.
	IsPublicUniversity bool `json:"is_public_university"`

	// Description is a short program description used in reply prompts.
	Description string `json:"description,omitempty"`

	// Duration is the nominal program length (e.g., "10 semestres").
	Duration string `json:"duration,omitempty"`

	// Cost is the approximate cost per term, zero for free programs.
	Cost float64 `json:"cost,omitempty"`

	// URL and ImageURL point at the program's page and thumbnail.
	URL      string `json:"url,omitempty"`
	ImageURL string `json:"image_url,omitempty"`

	// Embedding is the precomputed embedding of the program's descriptive
	// text. Its dimension is uniform across the corpus.
	Embedding []float32 `json:"-"`
}

// Match pairs a retrieved [Record] with its cosine similarity to the query
// vector. A fresh slice of matches is built per query; nothing persists
// across calls.
type Match struct {
	Record Record  `json:"record"`
	Score  float64 `json:"score"`
}
