package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/llm"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/retry"
	"github.com/verifidia/verifidia-engine/pkg/safety"
)

// WriterInstructions is the writer's system prompt. Persisted verbatim on
// every article as systemPromptUsed for transparency.
var WriterInstructions = `You are an encyclopedic writer for Verifidia, an open-source verified encyclopedia. ` + safety.Constraints + `

Write comprehensive Wikipedia-style articles. Structure your response as valid JSON:
{
  "title": "Article Title",
  "summary": "2-3 sentence overview",
  "sections": [{ "heading": "Section Name", "content": "Section content...", "citations": [0, 1] }],
  "relatedTopics": ["Topic 1", "Topic 2"]
}

Be factual, neutral, and cite sources by their index number. Write in the specified language.`

// Writer drafts a full article from researched sources.
type Writer interface {
	Write(ctx context.Context, topic, locale string, sources []models.Source) (models.Draft, error)

	// Instructions returns the system prompt, for article provenance.
	Instructions() string

	// Model returns the underlying model name, for article provenance.
	Model() string
}

type writer struct {
	client   llm.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewWriter creates a Writer backed by the given LLM client.
func NewWriter(client llm.Client, logger *zap.Logger) Writer {
	return &writer{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("writer"),
	}
}

var _ Writer = (*writer)(nil)

func (w *writer) Write(ctx context.Context, topic, locale string, sources []models.Source) (models.Draft, error) {
	var summary strings.Builder
	for i, source := range sources {
		fmt.Fprintf(&summary, "[%d] %s: %s\n", i, source.Title, source.Snippet)
	}

	prompt := fmt.Sprintf("Write a Wikipedia-style article about %q in locale %q.\n\nSources:\n%s\nReturn valid JSON only.",
		topic, locale, summary.String())

	fallback := models.Draft{
		Title:         topic,
		Summary:       "",
		Sections:      []models.Section{},
		RelatedTopics: []string{},
	}

	raw, err := retry.DoIfRetryable(ctx, w.retryCfg, func() (string, error) {
		return w.client.Generate(ctx, prompt, WriterInstructions)
	})
	if err != nil {
		return models.Draft{}, fmt.Errorf("write article for %q: %w", topic, err)
	}

	draft, err := llm.ParseResponse[models.Draft](raw)
	if err != nil || draft.Title == "" {
		w.logger.Warn("Malformed writer output, falling back to empty draft",
			zap.String("topic", topic),
			zap.Error(err))
		return fallback, nil
	}

	if draft.Sections == nil {
		draft.Sections = []models.Section{}
	}
	if draft.RelatedTopics == nil {
		draft.RelatedTopics = []string{}
	}

	return draft, nil
}

func (w *writer) Instructions() string {
	return WriterInstructions
}

func (w *writer) Model() string {
	return w.client.Model()
}
