// Package embeddings defines the Provider interface for vector embedding backends.
//
// An embeddings provider wraps a service that maps text to dense float32
// vectors (e.g., OpenAI text-embedding-3 or a local Ollama model). The
// guidance core uses one provider for two things: embedding each incoming
// message before it is blended into the user's interest vector, and — in the
// offline ingestion pipeline — embedding career descriptions for the corpus.
// Both sides must use the same model, or cosine similarity between a profile
// vector and a corpus vector is meaningless.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider is the abstraction over any text-embedding backend.
//
// All vectors returned by a single Provider instance share the dimensionality
// reported by Dimensions. The application verifies at startup that this
// matches the career corpus dimension; a mismatch is a configuration error
// and the process refuses to serve.
type Provider interface {
	// Embed computes the embedding vector for a single text string. Returns a
	// float32 slice of length Dimensions() or an error if the request fails
	// or ctx is cancelled. Text is passed to the backend verbatim; any
	// model-specific prompt prefixing is the caller's concern.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the fixed length of every vector produced by this
	// provider. Constant for the lifetime of the instance.
	Dimensions() int

	// ModelID returns the provider-specific model identifier
	// (e.g., "text-embedding-3-small"). Used for logging and for checking
	// that profile vectors and corpus vectors come from the same model.
	ModelID() string
}
