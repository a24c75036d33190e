// Package agents wraps the AI capability endpoints (research, writing,
// citation formatting, feedback review) behind narrow typed interfaces.
// Provider transport failures propagate as errors; malformed provider output
// is absorbed into deterministic fallbacks so a bad completion degrades the
// result instead of aborting the request.
package agents

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/llm"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/retry"
)

const researcherInstructions = "You are a research agent for a verified encyclopedia. " +
	"Given a topic, find 3-5 authoritative sources. Summarize key facts with source URLs. " +
	"Return a JSON object with: { sources: [{ title, url, snippet }], keyFacts: string[] }"

// Researcher finds authoritative sources for a topic.
type Researcher interface {
	Research(ctx context.Context, topic string) ([]models.Source, error)
}

type researcher struct {
	client   llm.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewResearcher creates a Researcher backed by the given LLM client.
func NewResearcher(client llm.Client, logger *zap.Logger) Researcher {
	return &researcher{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("researcher"),
	}
}

var _ Researcher = (*researcher)(nil)

type researchResponse struct {
	Sources []models.Source `json:"sources"`
}

func (r *researcher) Research(ctx context.Context, topic string) ([]models.Source, error) {
	prompt := fmt.Sprintf("Research the topic: %q. Find authoritative sources and key facts.", topic)

	raw, err := retry.DoIfRetryable(ctx, r.retryCfg, func() (string, error) {
		return r.client.Generate(ctx, prompt, researcherInstructions)
	})
	if err != nil {
		return nil, fmt.Errorf("research %q: %w", topic, err)
	}

	parsed, err := llm.ParseResponse[researchResponse](raw)
	if err != nil {
		r.logger.Warn("Malformed research output, falling back to empty source list",
			zap.String("topic", topic),
			zap.Error(err))
		return []models.Source{}, nil
	}

	sources := make([]models.Source, 0, len(parsed.Sources))
	for _, s := range parsed.Sources {
		if s.Title == "" || s.URL == "" {
			r.logger.Warn("Research output failed validation, falling back to empty source list",
				zap.String("topic", topic))
			return []models.Source{}, nil
		}
		sources = append(sources, s)
	}

	return sources, nil
}
