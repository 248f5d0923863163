package embedding_test

import (
	"errors"
	"math"
	"testing"

	"github.com/rumbo-ai/rumbo/pkg/embedding"
)

func TestBlend_FirstContact(t *testing.T) {
	t.Parallel()

	incoming := []float32{0.1, 0.2, 0.3}
	got, err := embedding.Blend(nil, incoming)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range incoming {
		if got[i] != incoming[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], incoming[i])
		}
	}

	// Result must be a copy, not an alias.
	got[0] = 99
	if incoming[0] != 0.1 {
		t.Error("Blend aliased the incoming vector")
	}
}

func TestBlend_Weights(t *testing.T) {
	t.Parallel()

	previous := []float32{1, 0}
	incoming := []float32{0, 1}

	got, err := embedding.Blend(previous, incoming)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 0.7 || got[1] != 0.3 {
		t.Errorf("blend = %v, want [0.7 0.3]", got)
	}
}

func TestBlend_DimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := embedding.Blend([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestBlend_EmptyIncoming(t *testing.T) {
	t.Parallel()

	if _, err := embedding.Blend([]float32{1, 2}, nil); err == nil {
		t.Fatal("expected error for empty incoming vector")
	}
}

// TestBlend_Bounded simulates a long conversation and checks the running
// vector stays bounded: with unit-norm message embeddings and weights that
// sum to 1, the blend can never exceed unit magnitude.
func TestBlend_Bounded(t *testing.T) {
	t.Parallel()

	unit := func(a, b float32) []float32 {
		n := float32(math.Sqrt(float64(a*a + b*b)))
		return []float32{a / n, b / n}
	}

	var running []float32
	messages := [][]float32{
		unit(1, 0), unit(0, 1), unit(1, 1), unit(-1, 0.5),
	}
	for turn := 0; turn < 200; turn++ {
		incoming := messages[turn%len(messages)]
		next, err := embedding.Blend(running, incoming)
		if err != nil {
			t.Fatalf("turn %d: %v", turn, err)
		}
		if n := embedding.Norm(next); n > 1.0000001 {
			t.Fatalf("turn %d: norm %v exceeds 1", turn, n)
		}
		running = next
	}
}

func TestCosine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := embedding.Cosine(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	t.Parallel()

	_, err := embedding.Cosine([]float32{1}, []float32{1, 2})
	if !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

// TestCosine_ScaleInvariant verifies why Blend can skip renormalization:
// cosine similarity does not change when a vector is scaled.
func TestCosine_ScaleInvariant(t *testing.T) {
	t.Parallel()

	a := []float32{0.3, 0.5, 0.2}
	b := []float32{0.1, 0.9, 0.4}
	scaled := []float32{0.03, 0.05, 0.02}

	full, err := embedding.Cosine(a, b)
	if err != nil {
		t.Fatal(err)
	}
	small, err := embedding.Cosine(scaled, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(full-small) > 1e-6 {
		t.Errorf("cosine changed under scaling: %v vs %v", full, small)
	}
}
