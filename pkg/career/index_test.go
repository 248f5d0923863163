package career_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rumbo-ai/rumbo/pkg/career"
)

func rec(id, name string, emb []float32) career.Record {
	return career.Record{ID: id, Name: name, Embedding: emb}
}

func TestNewIndex(t *testing.T) {
	t.Parallel()

	ix, err := career.NewIndex([]career.Record{
		rec("1", "Mecatronica", []float32{1, 0}),
		rec("2", "Medicina", []float32{0, 1}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ix.Len())
	}
	if ix.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d, want 2", ix.Dimensions())
	}
	if got := ix.All(); got[0].Name != "Mecatronica" || got[1].Name != "Medicina" {
		t.Errorf("All() lost ingestion order: %v", got)
	}
}

func TestNewIndex_Empty(t *testing.T) {
	t.Parallel()

	if _, err := career.NewIndex(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestNewIndex_MissingEmbedding(t *testing.T) {
	t.Parallel()

	_, err := career.NewIndex([]career.Record{rec("1", "Medicina", nil)})
	if err == nil {
		t.Fatal("expected error for record without embedding")
	}
}

func TestNewIndex_InconsistentDimensions(t *testing.T) {
	t.Parallel()

	_, err := career.NewIndex([]career.Record{
		rec("1", "Medicina", []float32{1, 0}),
		rec("2", "Derecho", []float32{1, 0, 0}),
	})
	if err == nil {
		t.Fatal("expected error for inconsistent dimensions")
	}
}

func writeArtifact(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "careers.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, `{
		"careers": [
			{"id": "c1", "name": "Mecatronica", "university": "EPN", "city": "Quito"},
			{"name": "Medicina", "university": "UCE", "city": "Quito"}
		],
		"embeddings": [[1, 0], [0, 1]]
	}`)

	ix, err := career.LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", ix.Len())
	}

	records := ix.All()
	if records[0].ID != "c1" {
		t.Errorf("explicit ID was replaced: %q", records[0].ID)
	}
	if records[1].ID == "" {
		t.Error("missing ID was not assigned")
	}
	if records[0].Embedding[0] != 1 || records[1].Embedding[1] != 1 {
		t.Error("embeddings not attached to their careers")
	}
}

func TestLoadFile_LengthMismatch(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, `{
		"careers": [{"name": "Medicina"}],
		"embeddings": [[1, 0], [0, 1]]
	}`)
	if _, err := career.LoadFile(path); err == nil {
		t.Fatal("expected error for careers/embeddings length mismatch")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	if _, err := career.LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	t.Parallel()

	path := writeArtifact(t, `not json at all`)
	if _, err := career.LoadFile(path); err == nil {
		t.Fatal("expected error for malformed artifact")
	}
}
