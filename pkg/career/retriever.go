package career

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/rumbo-ai/rumbo/pkg/embedding"
	"github.com/rumbo-ai/rumbo/pkg/profile"
)

// DefaultTopK is the number of matches returned when the caller does not ask
// for a specific count.
const DefaultTopK = 5

// prefMatchThreshold is the minimum Jaro-Winkler similarity for a stated
// preference string to count as matching a record field. It tolerates accent
// drift and small typos ("hibrida" vs "híbrida", "quito " vs "Quito") while
// rejecting genuinely different values.
const prefMatchThreshold = 0.90

// Retriever ranks the corpus against a query vector. It is stateless apart
// from the immutable [Index] it wraps, and safe for concurrent use.
//
// Preference filtering is a hard post-filter with fallback: when the user
// has stated preferences and at least one record satisfies them, only those
// records are ranked; when the filter would empty the result set, the
// unfiltered ranking is used instead. An over-constrained preference must
// never produce zero suggestions while relevant programs exist.
type Retriever struct {
	index *Index
}

// NewRetriever creates a Retriever over index.
func NewRetriever(index *Index) *Retriever {
	return &Retriever{index: index}
}

// Retrieve returns the topK records most similar to query by cosine
// similarity, descending, after preference filtering. Ties are broken by
// corpus order, so identical inputs always produce identical output.
//
// Returns [ErrInsufficientProfile] when query is empty,
// [embedding.ErrDimensionMismatch] when query does not match the corpus
// dimension, and an error for topK < 1.
func (r *Retriever) Retrieve(query []float32, prefs profile.Preferences, topK int) ([]Match, error) {
	if len(query) == 0 {
		return nil, ErrInsufficientProfile
	}
	if len(query) != r.index.Dimensions() {
		return nil, fmt.Errorf("career: retrieve: query has %d dimensions, corpus has %d: %w",
			len(query), r.index.Dimensions(), embedding.ErrDimensionMismatch)
	}
	if topK < 1 {
		return nil, fmt.Errorf("career: retrieve: topK must be >= 1, got %d", topK)
	}

	candidates := filterByPreferences(r.index.All(), prefs)
	if len(candidates) == 0 {
		// Over-constrained preferences: fall back to the whole corpus rather
		// than returning nothing.
		candidates = r.index.All()
	}

	matches := make([]Match, 0, len(candidates))
	for _, rec := range candidates {
		score, err := embedding.Cosine(query, rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("career: retrieve: record %q: %w", rec.ID, err)
		}
		matches = append(matches, Match{Record: rec, Score: score})
	}

	// Stable sort keeps corpus order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	matches = dedupeByName(matches)
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// filterByPreferences returns the records satisfying every stated preference.
// Unstated preferences (empty strings, nil boolean) constrain nothing.
func filterByPreferences(records []Record, prefs profile.Preferences) []Record {
	if prefs.City == "" && prefs.Modality == "" && prefs.IsPublicUniversity == nil {
		return records
	}

	var out []Record
	for _, rec := range records {
		if prefs.City != "" && !prefMatches(prefs.City, rec.City) {
			continue
		}
		if prefs.Modality != "" && !prefMatches(prefs.Modality, rec.Modality) {
			continue
		}
		if prefs.IsPublicUniversity != nil && rec.IsPublicUniversity != *prefs.IsPublicUniversity {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// prefMatches reports whether a stated preference value matches a record
// field, tolerating accents and single-character typos via Jaro-Winkler
// similarity on the case-folded strings.
func prefMatches(pref, field string) bool {
	if field == "" {
		return false
	}
	pref = strings.ToLower(strings.TrimSpace(pref))
	field = strings.ToLower(strings.TrimSpace(field))
	if pref == field {
		return true
	}
	return matchr.JaroWinkler(pref, field, false) >= prefMatchThreshold
}

// dedupeByName drops lower-ranked duplicates of the same program name. The
// corpus can hold the same career at several universities; suggestions should
// not be five rows of the same degree. The highest-scoring instance of each
// name survives.
func dedupeByName(matches []Match) []Match {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		key := strings.ToLower(strings.TrimSpace(m.Record.Name))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}
