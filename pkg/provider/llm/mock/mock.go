// Package mock provides a scriptable in-process LLM provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/rumbo-ai/rumbo/pkg/provider/llm"
)

// Ensure Provider implements llm.Provider.
var _ llm.Provider = (*Provider)(nil)

// Provider is a scriptable llm.Provider. Responses are returned in order; the
// last response repeats once the script is exhausted. Set Err to make every
// call fail instead.
//
// Safe for concurrent use.
type Provider struct {
	mu        sync.Mutex
	responses []string
	calls     int

	// Err, when non-nil, is returned by every Complete call.
	Err error

	// Requests records every request received, for assertions.
	Requests []llm.CompletionRequest
}

// New creates a mock Provider that replies with the given responses in order.
func New(responses ...string) *Provider {
	return &Provider{responses: responses}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Requests = append(p.Requests, req)
	if p.Err != nil {
		return nil, p.Err
	}

	var content string
	switch {
	case len(p.responses) == 0:
		content = ""
	case p.calls < len(p.responses):
		content = p.responses[p.calls]
	default:
		content = p.responses[len(p.responses)-1]
	}
	p.calls++

	return &llm.CompletionResponse{Content: content}, nil
}

// ModelID implements llm.Provider.
func (p *Provider) ModelID() string {
	return "mock"
}

// Calls returns how many Complete calls the provider has received.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}
