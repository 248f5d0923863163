// Package extract turns a free-text user message into a structured
// [profile.FieldUpdateSet] by calling a text-understanding model with a
// fixed transcription instruction.
//
// The extractor is strictly fail-open: a dead service, a timeout, an open
// circuit breaker, or a malformed response all produce an empty update set —
// "no new information this turn" — and never an error. An unreachable
// extraction service must degrade the profile's growth, not corrupt it or
// block the conversation. Failures are logged and counted, never surfaced.
package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/rumbo-ai/rumbo/internal/resilience"
	"github.com/rumbo-ai/rumbo/pkg/profile"
	"github.com/rumbo-ai/rumbo/pkg/provider/llm"
)

// DefaultTimeout bounds a single extraction call. The turn proceeds without
// updates when the deadline passes.
const DefaultTimeout = 8 * time.Second

// systemPrompt is the fixed instruction for the extraction model. It demands
// explicit-mention-only extraction in a closed JSON shape; the model must
// never infer values for fields the message does not mention.
const systemPrompt = `Eres un transcriptor de datos para un orientador vocacional. Tu único trabajo es leer el mensaje nuevo del usuario y extraer EXCLUSIVAMENTE los datos que el mensaje menciona de forma explícita.

Responde SOLO con un objeto JSON con estas claves (omite toda clave que el mensaje no mencione):
  "name": nombre del usuario (string)
  "city": ciudad donde quiere estudiar (string)
  "modality": modalidad preferida: "presencial", "en linea" o "hibrida" (string)
  "is_public_university": preferencia por universidad pública (true) o privada (false)
  "interests": lista de intereses o gustos mencionados (array de strings)
  "perceived_skills": lista de habilidades que el usuario dice tener (array de strings)
  "strong_subjects": materias en las que dice irle bien (array de strings)
  "weak_subjects": materias en las que dice irle mal (array de strings)
  "has_intent_signal": true solo si el usuario pide explícitamente sugerencias de carrera

REGLAS ESTRICTAS:
1. NUNCA inventes ni deduzcas valores para campos que el mensaje no menciona. Omítelos.
2. NUNCA repitas datos del perfil actual que el mensaje no vuelve a mencionar.
3. Responde EXCLUSIVAMENTE con el JSON, sin texto adicional ni marcas de markdown.`

// Extractor calls the text-understanding model and parses its output.
// Safe for concurrent use.
type Extractor struct {
	model   llm.Provider
	breaker *resilience.Breaker
	timeout time.Duration

	// onFailure, when non-nil, is invoked once per failed extraction. Wired
	// to the extraction-failure counter by the orchestrator setup.
	onFailure func()
}

// Option configures an [Extractor].
type Option func(*Extractor)

// WithTimeout overrides [DefaultTimeout] for the extraction call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithFailureHook registers fn to be called once per failed extraction,
// after the failure has been logged.
func WithFailureHook(fn func()) Option {
	return func(e *Extractor) { e.onFailure = fn }
}

// New creates an Extractor over the given model provider.
func New(model llm.Provider, opts ...Option) *Extractor {
	e := &Extractor{
		model:   model,
		breaker: resilience.New(resilience.Config{Name: "extractor"}),
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract returns the field updates explicitly present in message. current
// is passed to the model as context so it knows what is already known; it is
// never modified.
//
// Extract has no error return. Every failure mode — service unreachable,
// timeout, open breaker, unparseable response — yields an empty update set.
func (e *Extractor) Extract(ctx context.Context, message string, current *profile.UserProfile) profile.FieldUpdateSet {
	snapshot, err := json.Marshal(current)
	if err != nil {
		// A profile that cannot be serialized is a programming error, but the
		// fail-open contract still holds.
		e.fail("marshal profile snapshot", err)
		return profile.FieldUpdateSet{}
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var content string
	err = e.breaker.Do(func() error {
		resp, callErr := e.model.Complete(ctx, llm.CompletionRequest{
			SystemPrompt: systemPrompt,
			Messages: []llm.Message{
				{
					Role: llm.RoleUser,
					Content: "PERFIL ACTUAL:\n" + string(snapshot) +
						"\n\nMENSAJE NUEVO DEL USUARIO:\n" + message,
				},
			},
			Temperature: 0,
		})
		if callErr != nil {
			return callErr
		}
		content = resp.Content
		return nil
	})
	if err != nil {
		e.fail("extraction call", err)
		return profile.FieldUpdateSet{}
	}

	updates, err := parseUpdateSet(content)
	if err != nil {
		e.fail("parse response", err)
		return profile.FieldUpdateSet{}
	}
	return updates
}

// fail logs a failed extraction and fires the failure hook.
func (e *Extractor) fail(op string, err error) {
	slog.Warn("extraction failed, proceeding without updates", "op", op, "err", err)
	if e.onFailure != nil {
		e.onFailure()
	}
}
