// Package mock provides a deterministic in-process embeddings provider for
// tests and for running the service without any embedding backend.
package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/rumbo-ai/rumbo/pkg/provider/embeddings"
)

// Ensure Provider implements the embeddings.Provider interface.
var _ embeddings.Provider = (*Provider)(nil)

// Provider is a deterministic embeddings provider: the same text always maps
// to the same unit-norm vector, and different texts map to (very likely)
// different vectors. No network access, safe for concurrent use.
type Provider struct {
	dims int

	// EmbedErr, when non-nil, is returned by every Embed call. Used by tests
	// to exercise the embedding-failure path.
	EmbedErr error
}

// New creates a mock Provider producing vectors of the given dimension.
func New(dims int) *Provider {
	if dims <= 0 {
		dims = 8
	}
	return &Provider{dims: dims}
}

// Embed implements embeddings.Provider. The vector is derived from an FNV
// hash of the text, then normalized to unit length.
func (p *Provider) Embed(_ context.Context, text string) ([]float32, error) {
	if p.EmbedErr != nil {
		return nil, p.EmbedErr
	}

	vec := make([]float32, p.dims)
	var norm float64
	for i := range vec {
		h := fnv.New32a()
		h.Write([]byte(text))
		h.Write([]byte{byte(i)})
		// Map the hash into [-1, 1].
		v := float64(h.Sum32())/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec, nil
}

// Dimensions implements embeddings.Provider.
func (p *Provider) Dimensions() int {
	return p.dims
}

// ModelID implements embeddings.Provider.
func (p *Provider) ModelID() string {
	return "mock"
}
