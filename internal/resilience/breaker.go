// Package resilience provides the circuit breaker that guards calls to
// external model services.
//
// The guidance turn pipeline is fail-open around extraction: when the
// text-understanding service misbehaves, the turn proceeds with an empty
// update set. Without a breaker, a dead service still costs every turn a full
// timeout before failing open. [Breaker] short-circuits that wait: after a
// run of consecutive failures it rejects calls immediately for a cool-down
// period, then lets a limited number of probes through to detect recovery.
//
// Safe for concurrent use.
package resilience

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrOpen is returned by [Breaker.Do] when the breaker is rejecting calls.
// Callers treat it exactly like a call failure — for the extractor that means
// fail-open to an empty update set, just without the timeout wait.
var ErrOpen = errors.New("resilience: breaker open")

// State is the operating mode of a [Breaker].
type State int

const (
	// StateClosed forwards all calls. Normal operation.
	StateClosed State = iota

	// StateOpen rejects all calls with [ErrOpen] until the cool-down elapses.
	StateOpen

	// StateHalfOpen lets a limited number of probe calls through; success
	// closes the breaker, failure re-opens it.
	StateHalfOpen
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Config tunes a [Breaker]. Zero-value fields get defaults.
type Config struct {
	// Name labels the breaker in log messages (e.g. "extractor").
	Name string

	// Trip is the number of consecutive failures that opens the breaker.
	// Default: 3.
	Trip int

	// CoolDown is how long the breaker stays open before probing.
	// Default: 20s.
	CoolDown time.Duration

	// Probes is the number of half-open calls allowed before the breaker
	// decides. Default: 1.
	Probes int
}

// Breaker is a three-state circuit breaker (closed → open → half-open).
type Breaker struct {
	name     string
	trip     int
	coolDown time.Duration
	probes   int

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
	probeCalls  int
	probeFails  int
}

// New creates a [Breaker] from cfg.
func New(cfg Config) *Breaker {
	if cfg.Trip <= 0 {
		cfg.Trip = 3
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 20 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	return &Breaker{
		name:     cfg.Name,
		trip:     cfg.Trip,
		coolDown: cfg.CoolDown,
		probes:   cfg.Probes,
		state:    StateClosed,
	}
}

// Do runs fn if the breaker allows it. In the open state it returns [ErrOpen]
// without calling fn; in the half-open state only a limited number of probes
// get through.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) < b.coolDown {
			b.mu.Unlock()
			return ErrOpen
		}
		b.state = StateHalfOpen
		b.probeCalls = 0
		b.probeFails = 0
		slog.Debug("breaker half-open", "breaker", b.name)
	case StateHalfOpen:
		if b.probeCalls >= b.probes {
			b.mu.Unlock()
			return ErrOpen
		}
	}
	if b.state == StateHalfOpen {
		b.probeCalls++
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.onFailure()
		return err
	}
	b.onSuccess()
	return nil
}

// State returns the breaker's current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// onFailure records a failed call. Caller holds b.mu.
func (b *Breaker) onFailure() {
	b.lastFailure = time.Now()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.trip {
			b.state = StateOpen
			slog.Warn("breaker opened", "breaker", b.name, "consecutive_failures", b.failures)
		}
	case StateHalfOpen:
		b.probeFails++
		b.state = StateOpen
		slog.Warn("breaker re-opened after failed probe", "breaker", b.name)
	}
}

// onSuccess records a successful call. Caller holds b.mu.
func (b *Breaker) onSuccess() {
	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		if b.probeFails == 0 {
			b.state = StateClosed
			b.failures = 0
			slog.Info("breaker closed", "breaker", b.name)
		}
	}
}
