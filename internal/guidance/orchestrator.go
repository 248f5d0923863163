// Package guidance implements the per-message turn pipeline of the
// vocational-guidance conversation.
//
// One [Orchestrator.ProcessTurn] call runs the fixed stage sequence:
//
//	fetch profile → extract updates → merge → embed message → blend vector
//	→ retrieve careers → generate reply → persist profile
//
// Turns for different users run concurrently; turns for the same user are
// serialised, because merge is not commutative across overlapping writes.
// The merged profile is persisted even when retrieval or reply generation
// degrade — losing a profile update breaks the long-term memory guarantee,
// losing one reply does not.
package guidance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rumbo-ai/rumbo/internal/extract"
	"github.com/rumbo-ai/rumbo/internal/observe"
	"github.com/rumbo-ai/rumbo/pkg/career"
	"github.com/rumbo-ai/rumbo/pkg/embedding"
	"github.com/rumbo-ai/rumbo/pkg/profile"
	"github.com/rumbo-ai/rumbo/pkg/provider/embeddings"
	"github.com/rumbo-ai/rumbo/pkg/provider/llm"
)

// DefaultEmbedTimeout bounds the message-embedding call. Unlike extraction,
// embedding has no fail-open: without a vector there is nothing to blend and
// the turn fails.
const DefaultEmbedTimeout = 10 * time.Second

// Orchestrator wires the turn pipeline together. Construct with [New]; all
// methods are safe for concurrent use.
type Orchestrator struct {
	store     profile.Store
	extractor *extract.Extractor
	embedder  embeddings.Provider
	retriever *career.Retriever
	counselor llm.Provider
	metrics   *observe.Metrics

	topK         int
	embedTimeout time.Duration

	locks *userLocks
}

// Option configures an [Orchestrator].
type Option func(*Orchestrator)

// WithTopK sets how many career matches each turn retrieves.
// Values below 1 are ignored; the default is [career.DefaultTopK].
func WithTopK(k int) Option {
	return func(o *Orchestrator) {
		if k >= 1 {
			o.topK = k
		}
	}
}

// WithEmbedTimeout overrides [DefaultEmbedTimeout].
func WithEmbedTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.embedTimeout = d
		}
	}
}

// WithMetrics injects a [observe.Metrics] instance. The default is
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// New creates an Orchestrator. All collaborators are required.
func New(store profile.Store, extractor *extract.Extractor, embedder embeddings.Provider, retriever *career.Retriever, counselor llm.Provider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:        store,
		extractor:    extractor,
		embedder:     embedder,
		retriever:    retriever,
		counselor:    counselor,
		topK:         career.DefaultTopK,
		embedTimeout: DefaultEmbedTimeout,
		locks:        newUserLocks(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}

// TurnResult is everything one processed turn produced: the counselor reply,
// the ranked career matches (empty on a first contact where retrieval was
// skipped), and the persisted profile state after the turn.
type TurnResult struct {
	Reply   string               `json:"reply"`
	Matches []career.Match       `json:"careers"`
	Profile *profile.UserProfile `json:"profile"`
}

// ProcessTurn runs the full pipeline for one incoming message. It returns an
// error only when the turn genuinely failed: the message could not be
// embedded, or the updated profile could not be persisted. Extraction,
// retrieval, and reply generation all degrade gracefully instead of failing
// the turn.
func (o *Orchestrator) ProcessTurn(ctx context.Context, userID, message string) (*TurnResult, error) {
	if userID == "" {
		return nil, errors.New("guidance: userID must not be empty")
	}
	if message == "" {
		return nil, errors.New("guidance: message must not be empty")
	}

	release := o.locks.acquire(userID)
	defer release()

	start := time.Now()
	result, err := o.runTurn(ctx, userID, message)

	status := "ok"
	if err != nil {
		status = "error"
	}
	o.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds())
	o.metrics.Turns.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))

	return result, err
}

// runTurn executes the stages. Caller holds the per-user lock.
func (o *Orchestrator) runTurn(ctx context.Context, userID, message string) (*TurnResult, error) {
	log := observe.Logger(ctx).With("user_id", userID)

	// 1. Fetch. An unknown user starts from an empty profile.
	current, err := o.store.Get(ctx, userID)
	if errors.Is(err, profile.ErrNotFound) {
		current = &profile.UserProfile{}
	} else if err != nil {
		return nil, fmt.Errorf("guidance: fetch profile: %w", err)
	}

	// 2. Extract. Fail-open: a misbehaving extraction service yields an
	// empty update set and the turn continues.
	extractStart := time.Now()
	updates := o.extractor.Extract(ctx, message, current)
	o.metrics.ExtractionDuration.Record(ctx, time.Since(extractStart).Seconds())

	// 3. Merge. Monotone: nothing already known is lost.
	merged := profile.Merge(current, updates)

	// 4. Embed and blend. No fail-open here: without a message vector there
	// is nothing to blend, and serving matches against a stale vector while
	// claiming to have processed the message would be lying. The merged
	// profile is still persisted so the extracted facts survive the failure.
	embedCtx, cancel := context.WithTimeout(ctx, o.embedTimeout)
	embedStart := time.Now()
	msgVec, err := o.embedder.Embed(embedCtx, message)
	cancel()
	o.metrics.EmbeddingDuration.Record(ctx, time.Since(embedStart).Seconds())
	if err != nil {
		o.metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "embeddings")))
		if putErr := o.store.Put(ctx, userID, merged); putErr != nil {
			log.Error("persist after embed failure also failed", "err", putErr)
		}
		return nil, fmt.Errorf("guidance: embed message: %w", err)
	}

	blended, err := embedding.Blend(merged.InterestVector, msgVec)
	if err != nil {
		// Dimension drift between provider and stored profile is a
		// configuration error; no recovery at turn level.
		return nil, fmt.Errorf("guidance: blend: %w", err)
	}
	merged.InterestVector = blended

	// 5. Retrieve. Degrades to no matches; the conversation goes on.
	retrievalStart := time.Now()
	matches, err := o.retriever.Retrieve(merged.InterestVector, merged.Preferences, o.topK)
	o.metrics.RetrievalDuration.Record(ctx, time.Since(retrievalStart).Seconds())
	if errors.Is(err, career.ErrInsufficientProfile) {
		matches = nil
	} else if err != nil {
		log.Warn("retrieval failed, continuing without matches", "err", err)
		matches = nil
	}

	// 6. Reply. Best-effort: on model failure the fallback reply is used.
	replyStart := time.Now()
	reply, err := generateReply(ctx, o.counselor, merged, matches, message, updates.HasIntentSignal)
	o.metrics.ReplyDuration.Record(ctx, time.Since(replyStart).Seconds())
	if err != nil {
		o.metrics.ProviderErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", "llm")))
		log.Warn("reply generation degraded to fallback", "err", err)
	}

	// 7. Persist, unconditionally. A lost profile update breaks the memory
	// guarantee, so a failed Put fails the whole turn even though a reply
	// was already generated.
	if err := o.store.Put(ctx, userID, merged); err != nil {
		return nil, fmt.Errorf("guidance: persist profile: %w", err)
	}

	return &TurnResult{
		Reply:   reply,
		Matches: matches,
		Profile: merged,
	}, nil
}
