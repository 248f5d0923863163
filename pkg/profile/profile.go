// Package profile defines the durable user profile built up over a guidance
// conversation and the merge rules that keep it monotone.
//
// A [UserProfile] accumulates identity facts (name), structured preferences
// (city, modality, public/private university), set-like lists (interests,
// perceived skills, strong and weak subjects), and a running interest
// embedding blended across turns. The one hard rule of the profile is that
// knowledge is never lost by omission: a turn that does not mention a field
// leaves that field untouched. [Merge] enforces this.
//
// Persistence is delegated to the [Store] interface; implementations live in
// the postgres, sqlite, and mock subpackages. Every implementation must be
// safe for concurrent use.
package profile

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by [Store.Get] when no profile exists for a user.
// First contact with a user is expected to hit this; callers should treat it
// as "start from an empty profile", not as a failure.
var ErrNotFound = errors.New("profile: not found")

// Preferences holds the structured study preferences of a user.
// Scalar fields follow last-write-wins semantics under [Merge]: a later turn
// that states a new city overwrites the old one, a turn that says nothing
// about the city leaves it alone.
type Preferences struct {
	// City is the preferred study location (e.g., "quito"). Stored normalized
	// (lowercased, trimmed). Empty means no preference stated yet.
	City string `json:"city,omitempty" yaml:"city,omitempty"`

	// Modality is the preferred study modality (e.g., "presencial",
	// "en linea", "hibrida"). Stored normalized. Empty means unstated.
	Modality string `json:"modality,omitempty" yaml:"modality,omitempty"`

	// IsPublicUniversity is the stated preference for public vs. private
	// institutions. Nil means the user has never expressed one — which is
	// distinct from an explicit false.
	IsPublicUniversity *bool `json:"is_public_university,omitempty" yaml:"is_public_university,omitempty"`
}

// UserProfile is everything durable the system knows about one user.
//
// List fields behave as ordered sets of normalized strings: lowercase,
// trimmed, no duplicates, first-seen order preserved. The InterestVector is
// the running blend of per-message embeddings; nil until the first message
// has been embedded.
type UserProfile struct {
	// Name is the user's stated name, verbatim as extracted. Empty until the
	// user introduces themselves.
	Name string `json:"name,omitempty"`

	// Preferences holds structured study preferences.
	Preferences Preferences `json:"preferences"`

	// Interests are topic interests stated across the conversation
	// ("matematicas", "robotica", …).
	Interests []string `json:"interests,omitempty"`

	// PerceivedSkills are skills the user believes they have.
	PerceivedSkills []string `json:"perceived_skills,omitempty"`

	// StrongSubjects are school subjects the user reports doing well in.
	StrongSubjects []string `json:"strong_subjects,omitempty"`

	// WeakSubjects are school subjects the user reports struggling with.
	WeakSubjects []string `json:"weak_subjects,omitempty"`

	// InterestVector is the blended interest embedding. Nil until the first
	// turn has been processed. Its dimension is fixed by the embeddings
	// provider and must match the career corpus.
	InterestVector []float32 `json:"interest_vector,omitempty"`
}

// Clone returns a deep copy of p. Merge operates on clones so that callers
// never observe their input profile mutating underneath them.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return &UserProfile{}
	}
	cp := *p
	if p.Preferences.IsPublicUniversity != nil {
		b := *p.Preferences.IsPublicUniversity
		cp.Preferences.IsPublicUniversity = &b
	}
	cp.Interests = cloneStrings(p.Interests)
	cp.PerceivedSkills = cloneStrings(p.PerceivedSkills)
	cp.StrongSubjects = cloneStrings(p.StrongSubjects)
	cp.WeakSubjects = cloneStrings(p.WeakSubjects)
	if p.InterestVector != nil {
		cp.InterestVector = make([]float32, len(p.InterestVector))
		copy(cp.InterestVector, p.InterestVector)
	}
	return &cp
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Normalize lowercases and trims an item for storage in a profile list.
// Items that normalize to the empty string are dropped by [Merge].
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Store is the persistence boundary for user profiles: a blocking key-value
// interface addressed by user ID. Retry and backoff are the implementation's
// concern, not the caller's.
//
// Profiles are never deleted through this interface — long-term memory is
// the product guarantee, and any retention policy belongs to the store
// deployment, not the conversation core.
//
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored profile for userID, or [ErrNotFound] when the
	// user has never been seen.
	Get(ctx context.Context, userID string) (*UserProfile, error)

	// Put stores profile for userID, replacing any previous value.
	Put(ctx context.Context, userID string, profile *UserProfile) error
}
