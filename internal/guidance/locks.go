package guidance

import "sync"

// userLocks serialises turns per user ID. Merge is not commutative across
// overlapping writes to the same profile: two concurrent turns for one user
// could interleave fetch/merge/persist and lose an update. Turns for
// different users share nothing and proceed in parallel.
//
// Lock entries are reference-counted and removed when the last holder
// releases, so the map does not grow with the lifetime user population.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*userLock)}
}

// acquire blocks until the caller holds the exclusive lock for userID and
// returns the release function.
func (ul *userLocks) acquire(userID string) (release func()) {
	ul.mu.Lock()
	l, ok := ul.locks[userID]
	if !ok {
		l = &userLock{}
		ul.locks[userID] = l
	}
	l.refs++
	ul.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		ul.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(ul.locks, userID)
		}
		ul.mu.Unlock()
	}
}
