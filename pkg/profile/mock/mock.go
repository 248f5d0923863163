// Package mock provides an in-memory [profile.Store] for tests and for
// running without any external database.
package mock

import (
	"context"
	"sync"

	"github.com/rumbo-ai/rumbo/pkg/profile"
)

// Store is an in-memory [profile.Store]. Profiles are deep-copied on the way
// in and out so callers cannot alias the stored value.
//
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]*profile.UserProfile

	// FailPut, when non-nil, is returned by every Put call. Used by tests to
	// exercise persistence-failure handling.
	FailPut error
}

// Compile-time interface check.
var _ profile.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{profiles: make(map[string]*profile.UserProfile)}
}

// Get implements [profile.Store].
func (s *Store) Get(_ context.Context, userID string) (*profile.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p.Clone(), nil
}

// Put implements [profile.Store].
func (s *Store) Put(_ context.Context, userID string, p *profile.UserProfile) error {
	if s.FailPut != nil {
		return s.FailPut
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = p.Clone()
	return nil
}

// Len returns the number of stored profiles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}
