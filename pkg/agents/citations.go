package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/llm"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/retry"
)

const citationInstructions = `You are a citation formatter. Given research sources and article content, ` +
	`extract and format citations as JSON array: [{ "text": "Source description", "url": "https://...", "accessedDate": "2026-02-21" }]. ` +
	`Return only the JSON array.`

// CitationFormatter turns consulted sources into formatted citations.
type CitationFormatter interface {
	Format(ctx context.Context, sources []models.Source) ([]models.Citation, error)
}

type citationFormatter struct {
	client   llm.Client
	retryCfg *retry.Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewCitationFormatter creates a CitationFormatter backed by the given LLM
// client.
func NewCitationFormatter(client llm.Client, logger *zap.Logger) CitationFormatter {
	return &citationFormatter{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("citations"),
		now:      time.Now,
	}
}

var _ CitationFormatter = (*citationFormatter)(nil)

func (c *citationFormatter) Format(ctx context.Context, sources []models.Source) ([]models.Citation, error) {
	var sourcesText strings.Builder
	for i, source := range sources {
		fmt.Fprintf(&sourcesText, "[%d] %s - %s\n", i, source.Title, source.URL)
	}

	prompt := fmt.Sprintf("Format these sources as citations:\n%s\nReturn JSON array only.", sourcesText.String())

	raw, err := retry.DoIfRetryable(ctx, c.retryCfg, func() (string, error) {
		return c.client.Generate(ctx, prompt, citationInstructions)
	})
	if err != nil {
		return nil, fmt.Errorf("format citations: %w", err)
	}

	citations, parseErr := llm.ParseResponse[[]models.Citation](raw)
	if parseErr == nil {
		for _, citation := range citations {
			if citation.Text == "" || citation.URL == "" {
				parseErr = fmt.Errorf("citation missing text or url")
				break
			}
		}
	}
	if parseErr != nil {
		c.logger.Warn("Malformed citation output, synthesizing citations from sources",
			zap.Error(parseErr))
		return c.synthesize(sources), nil
	}

	return citations, nil
}

// synthesize builds one citation per source with today's date, used when the
// formatter returns garbage.
func (c *citationFormatter) synthesize(sources []models.Source) []models.Citation {
	today := c.now().Format("2006-01-02")
	citations := make([]models.Citation, 0, len(sources))
	for _, source := range sources {
		citations = append(citations, models.Citation{
			Text:         source.Title,
			URL:          source.URL,
			AccessedDate: today,
		})
	}
	return citations
}
