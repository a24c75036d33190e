package llm

import "context"

// MockClient is a configurable mock for testing capability providers.
// Set GenerateFunc to control behavior; nil returns an empty response.
type MockClient struct {
	GenerateFunc func(ctx context.Context, prompt, systemMessage string) (string, error)
	ModelName    string

	// Calls counts Generate invocations, for asserting providers were (not)
	// reached.
	Calls int
}

// Generate delegates to GenerateFunc.
func (m *MockClient) Generate(ctx context.Context, prompt, systemMessage string) (string, error) {
	m.Calls++
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, systemMessage)
	}
	return "", nil
}

// Model returns the configured mock model name.
func (m *MockClient) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}

// Endpoint returns a fixed mock endpoint.
func (m *MockClient) Endpoint() string {
	return "mock://llm"
}
