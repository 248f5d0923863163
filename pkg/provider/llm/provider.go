// Package llm defines the Provider interface for Large Language Model backends.
//
// An LLM provider wraps a remote or local model API (e.g., OpenAI, Anthropic,
// Gemini, or a local Ollama instance) behind a uniform request/response
// interface. The guidance core makes two kinds of LLM calls per turn, both
// non-streaming: the profile-update extraction call and the counselor reply
// call. Streaming is deliberately out of this interface — every consumer
// needs the complete text before it can act on it.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly.
package llm

import "context"

// Role identifies the author of a [Message].
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in a conversation passed to the model.
type Message struct {
	Role    Role
	Content string
}

// Usage holds token accounting returned by the backend. Counts are in the
// model's native token unit and may differ between providers for the same
// text.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionRequest carries everything the model needs to produce a response.
// At minimum Messages must be non-empty.
type CompletionRequest struct {
	// Messages is the ordered conversation. The last message is typically
	// from the user role and drives the response.
	Messages []Message

	// SystemPrompt is a high-priority instruction injected before the
	// conversation. Providers without a dedicated system slot prepend it as
	// a system-role message.
	SystemPrompt string

	// Temperature controls output randomness in [0.0, 2.0]. The extraction
	// call uses 0 for near-deterministic output; the reply call uses a
	// moderate value for natural phrasing.
	Temperature float64

	// MaxTokens caps completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the full, non-streaming model response.
type CompletionResponse struct {
	// Content is the complete text of the assistant's reply.
	Content string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails or ctx is cancelled first.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// ModelID returns the backend-specific model identifier (e.g. "gpt-4o").
	// Used for logging.
	ModelID() string
}
