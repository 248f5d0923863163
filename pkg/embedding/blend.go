// Package embedding holds the pure vector arithmetic of the guidance core:
// blending a fresh message embedding into the running interest vector, and
// cosine similarity for retrieval.
//
// Nothing here talks to an embedding backend — providers live under
// pkg/provider/embeddings. Keeping the arithmetic separate makes it testable
// without any network collaborator.
package embedding

import (
	"errors"
	"fmt"
	"math"
)

// Blend weights. Previous turns dominate so a single off-topic message does
// not erase accumulated signal, while each new message still shifts the
// vector meaningfully. The weights sum to 1.
const (
	WeightPrevious float32 = 0.7
	WeightIncoming float32 = 0.3
)

// ErrDimensionMismatch reports that two vectors of different lengths were
// combined or compared. This is a configuration error (provider and corpus
// disagree on the embedding model), not a runtime condition to recover from.
var ErrDimensionMismatch = errors.New("embedding: dimension mismatch")

// Blend combines the previous interest vector with a freshly computed message
// embedding into the new running vector.
//
// A nil previous vector means first contact: incoming is returned as-is (a
// copy). Otherwise the result is WeightPrevious*previous + WeightIncoming*incoming,
// element-wise. The result is deliberately not renormalized — magnitude is
// meaningless after blending and the retriever compares by cosine similarity,
// which ignores it.
//
// Returns [ErrDimensionMismatch] when both vectors are present and their
// lengths differ.
func Blend(previous, incoming []float32) ([]float32, error) {
	if len(incoming) == 0 {
		return nil, errors.New("embedding: blend: incoming vector is empty")
	}
	if previous == nil {
		out := make([]float32, len(incoming))
		copy(out, incoming)
		return out, nil
	}
	if len(previous) != len(incoming) {
		return nil, fmt.Errorf("%w: previous has %d dimensions, incoming has %d",
			ErrDimensionMismatch, len(previous), len(incoming))
	}

	out := make([]float32, len(incoming))
	for i := range out {
		out[i] = WeightPrevious*previous[i] + WeightIncoming*incoming[i]
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1]: their dot
// product divided by the product of their magnitudes. A zero vector has no
// direction; similarity against one is defined as 0.
//
// Returns [ErrDimensionMismatch] when the lengths differ.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d dimensions", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// Norm returns the Euclidean magnitude of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
