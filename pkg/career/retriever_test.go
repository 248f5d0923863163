package career_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rumbo-ai/rumbo/pkg/career"
	"github.com/rumbo-ai/rumbo/pkg/embedding"
	"github.com/rumbo-ai/rumbo/pkg/profile"
)

// testIndex builds a small corpus with distinguishable directions:
// mecatronica points at (1,0), medicina at (0,1), derecho between them.
func testIndex(t *testing.T) *career.Index {
	t.Helper()
	ix, err := career.NewIndex([]career.Record{
		{
			ID: "c1", Name: "Mecatronica", University: "EPN",
			City: "quito", Modality: "presencial", IsPublicUniversity: true,
			Embedding: []float32{1, 0},
		},
		{
			ID: "c2", Name: "Medicina", University: "UCE",
			City: "quito", Modality: "presencial", IsPublicUniversity: true,
			Embedding: []float32{0, 1},
		},
		{
			ID: "c3", Name: "Derecho", University: "USFQ",
			City: "quito", Modality: "presencial", IsPublicUniversity: false,
			Embedding: []float32{0.7, 0.7},
		},
		{
			ID: "c4", Name: "Mecatronica", University: "UTPL",
			City: "loja", Modality: "en linea", IsPublicUniversity: false,
			Embedding: []float32{0.9, 0.1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestRetrieve_RanksByCosine(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	matches, err := r.Retrieve([]float32{1, 0}, profile.Preferences{}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if matches[0].Record.ID != "c1" {
		t.Errorf("top match = %q, want c1", matches[0].Record.ID)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches not in descending score order at %d: %v > %v",
				i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestRetrieve_TopKTruncation(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	matches, err := r.Retrieve([]float32{1, 1}, profile.Preferences{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("len(matches) = %d, want 2", len(matches))
	}
}

func TestRetrieve_DedupesByName(t *testing.T) {
	t.Parallel()

	// Both Mecatronica records rank high for (1,0); only the better-scoring
	// one should survive.
	r := career.NewRetriever(testIndex(t))
	matches, err := r.Retrieve([]float32{1, 0}, profile.Preferences{}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := make(map[string]int)
	for _, m := range matches {
		names[m.Record.Name]++
	}
	if names["Mecatronica"] != 1 {
		t.Errorf("Mecatronica appears %d times, want 1", names["Mecatronica"])
	}
	if matches[0].Record.ID != "c1" {
		t.Errorf("surviving duplicate = %q, want the higher-scoring c1", matches[0].Record.ID)
	}
}

func TestRetrieve_PreferenceFilter(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	pub := true
	matches, err := r.Retrieve([]float32{1, 0}, profile.Preferences{
		City:               "quito",
		IsPublicUniversity: &pub,
	}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range matches {
		if m.Record.City != "quito" || !m.Record.IsPublicUniversity {
			t.Errorf("record %q violates stated preferences", m.Record.ID)
		}
	}
}

func TestRetrieve_PreferenceTyposTolerated(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	matches, err := r.Retrieve([]float32{1, 0}, profile.Preferences{City: "Quiito"}, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, m := range matches {
		if m.Record.City != "quito" {
			t.Errorf("near-miss city %q did not filter to quito records, got %q", "Quiito", m.Record.City)
		}
	}
}

func TestRetrieve_OverconstrainedFallsBack(t *testing.T) {
	t.Parallel()

	// No record is in "cuenca"; the filter would be empty, so the full
	// corpus is ranked instead.
	r := career.NewRetriever(testIndex(t))
	matches, err := r.Retrieve([]float32{1, 0}, profile.Preferences{City: "cuenca"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("over-constrained preferences produced zero matches")
	}
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	_, err := r.Retrieve(nil, profile.Preferences{}, 3)
	if !errors.Is(err, career.ErrInsufficientProfile) {
		t.Fatalf("err = %v, want ErrInsufficientProfile", err)
	}
}

func TestRetrieve_DimensionMismatch(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	_, err := r.Retrieve([]float32{1, 0, 0}, profile.Preferences{}, 3)
	if !errors.Is(err, embedding.ErrDimensionMismatch) {
		t.Fatalf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestRetrieve_InvalidTopK(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	if _, err := r.Retrieve([]float32{1, 0}, profile.Preferences{}, 0); err == nil {
		t.Fatal("expected error for topK = 0")
	}
}

func TestRetrieve_Deterministic(t *testing.T) {
	t.Parallel()

	r := career.NewRetriever(testIndex(t))
	query := []float32{0.6, 0.8}

	first, err := r.Retrieve(query, profile.Preferences{}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := r.Retrieve(query, profile.Preferences{}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("retrieval is not deterministic:\nfirst %v\nagain %v", first, again)
		}
	}
}
