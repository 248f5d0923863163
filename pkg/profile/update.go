package profile

import "strings"

// FieldUpdateSet is the transient output of one extraction pass over a single
// message: only the fields the message actually mentioned are non-zero. It is
// consumed once by [Merge] and discarded, never persisted.
//
// Scalar pointers distinguish "mentioned" from "absent": a nil Name means the
// message said nothing about the name, while a non-nil pointer to "" would be
// an (ignored) attempt to clear it.
type FieldUpdateSet struct {
	// Name is the user's name when the message introduced one.
	Name *string `json:"name"`

	// City is a stated preferred study city.
	City *string `json:"city"`

	// Modality is a stated preferred study modality.
	Modality *string `json:"modality"`

	// IsPublicUniversity is a stated public/private institution preference.
	IsPublicUniversity *bool `json:"is_public_university"`

	// Interests, PerceivedSkills, StrongSubjects, and WeakSubjects carry only
	// the items newly mentioned in this message. They are unioned into the
	// profile's lists, never substituted for them.
	Interests       []string `json:"interests"`
	PerceivedSkills []string `json:"perceived_skills"`
	StrongSubjects  []string `json:"strong_subjects"`
	WeakSubjects    []string `json:"weak_subjects"`

	// HasIntentSignal reports that the message explicitly asked for career
	// suggestions ("¿qué carrera me recomiendas?"). It steers reply
	// generation and is never stored.
	HasIntentSignal bool `json:"has_intent_signal"`
}

// IsEmpty reports whether u carries no field updates at all. The intent
// signal alone does not make an update set non-empty — it changes the reply,
// not the profile.
func (u FieldUpdateSet) IsEmpty() bool {
	return u.Name == nil &&
		u.City == nil &&
		u.Modality == nil &&
		u.IsPublicUniversity == nil &&
		len(u.Interests) == 0 &&
		len(u.PerceivedSkills) == 0 &&
		len(u.StrongSubjects) == 0 &&
		len(u.WeakSubjects) == 0
}

// Merge combines current with updates under the monotone-retention rules:
//
//   - Scalars (name, preferences): overwritten when present in updates,
//     retained unchanged when absent. A scalar update that normalizes to the
//     empty string is ignored — omission never clears a field, and neither
//     does an empty extraction artifact.
//   - Lists: each candidate item is normalized (lowercased, trimmed); if
//     non-empty and not already present it is appended, preserving first-seen
//     order. Existing items are never removed or reordered.
//
// Merge returns a new profile and never mutates current. A nil current is
// treated as an empty profile (first contact).
func Merge(current *UserProfile, updates FieldUpdateSet) *UserProfile {
	next := current.Clone()

	if updates.Name != nil {
		if name := Normalize(*updates.Name); name != "" {
			// Keep the original casing of the stated name; only reject
			// whitespace-blank values.
			next.Name = strings.TrimSpace(*updates.Name)
		}
	}
	if updates.City != nil {
		if city := Normalize(*updates.City); city != "" {
			next.Preferences.City = city
		}
	}
	if updates.Modality != nil {
		if mod := Normalize(*updates.Modality); mod != "" {
			next.Preferences.Modality = mod
		}
	}
	if updates.IsPublicUniversity != nil {
		b := *updates.IsPublicUniversity
		next.Preferences.IsPublicUniversity = &b
	}

	next.Interests = mergeList(next.Interests, updates.Interests)
	next.PerceivedSkills = mergeList(next.PerceivedSkills, updates.PerceivedSkills)
	next.StrongSubjects = mergeList(next.StrongSubjects, updates.StrongSubjects)
	next.WeakSubjects = mergeList(next.WeakSubjects, updates.WeakSubjects)

	return next
}

// mergeList appends the normalized, deduplicated candidates to existing,
// preserving first-seen order. The existing slice is assumed to already be
// normalized and duplicate-free (it was built by previous mergeList calls).
func mergeList(existing, candidates []string) []string {
	if len(candidates) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing))
	for _, item := range existing {
		seen[item] = struct{}{}
	}
	out := existing
	for _, c := range candidates {
		n := Normalize(c)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
