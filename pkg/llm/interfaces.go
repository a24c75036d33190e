// Package llm wraps the AI capability endpoints behind a narrow client
// interface. Providers are treated as untrusted black boxes: transport errors
// are classified for retryability and raw output goes through tolerant JSON
// extraction before any caller sees it.
package llm

import "context"

// Client is the narrow interface every capability provider is built on.
// Use it for dependency injection so tests can substitute MockClient.
type Client interface {
	// Generate produces a completion for the prompt under the given system
	// instructions.
	Generate(ctx context.Context, prompt, systemMessage string) (string, error)

	// Model returns the configured model name, for provenance fields.
	Model() string

	// Endpoint returns the configured endpoint.
	Endpoint() string
}

var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
