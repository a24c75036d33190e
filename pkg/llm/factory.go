package llm

import (
	"fmt"

	"go.uber.org/zap"
)

// Provider selects which API family a client speaks.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Config describes one capability endpoint.
type Config struct {
	Provider Provider
	Endpoint string
	Model    string
	APIKey   string
}

// NewFromConfig builds a client for the configured provider.
func NewFromConfig(cfg Config, logger *zap.Logger) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
	case ProviderOpenAI, "":
		return NewOpenAIClient(cfg.Endpoint, cfg.Model, cfg.APIKey, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
