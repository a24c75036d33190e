package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/agents"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
	"github.com/verifidia/verifidia-engine/pkg/safety"
)

// Stage outputs chain through the pipeline as strict supersets: each stage
// receives the accumulated record of all prior stages and passes forward its
// own addition. No stage may rewind or skip ahead.

// SafetyCheckOutput is produced by the safety-check stage.
type SafetyCheckOutput struct {
	Topic        string
	Locale       string
	SafetyPassed bool
}

// ResearchOutput adds the consulted sources.
type ResearchOutput struct {
	SafetyCheckOutput
	Sources []models.Source
}

// WriteOutput adds the drafted article.
type WriteOutput struct {
	ResearchOutput
	Draft models.Draft
}

// CitationsOutput adds the formatted citations.
type CitationsOutput struct {
	WriteOutput
	Citations []models.Citation
}

// ScoredOutput adds the confidence score.
type ScoredOutput struct {
	CitationsOutput
	ConfidenceScore float64
}

// GenerationResult is the pipeline's terminal output. It reflects this run's
// computed values even when the persist step lost a benign insert race;
// callers needing strict consistency should re-fetch by (topic, locale).
type GenerationResult struct {
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// GenerationPipeline runs the ordered generation steps for one (topic,
// locale): safety check, research, write, extract citations, score
// confidence, persist. Stages execute strictly sequentially; any stage error
// aborts the run.
type GenerationPipeline interface {
	Run(ctx context.Context, topic, locale string) (*GenerationResult, error)
}

type generationPipeline struct {
	researcher agents.Researcher
	writer     agents.Writer
	citations  agents.CitationFormatter
	articles   repositories.ArticleRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewGenerationPipeline creates the article generation pipeline.
func NewGenerationPipeline(
	researcher agents.Researcher,
	writer agents.Writer,
	citations agents.CitationFormatter,
	articles repositories.ArticleRepository,
	logger *zap.Logger,
) GenerationPipeline {
	return &generationPipeline{
		researcher: researcher,
		writer:     writer,
		citations:  citations,
		articles:   articles,
		logger:     logger.Named("generation-pipeline"),
		now:        time.Now,
	}
}

var _ GenerationPipeline = (*generationPipeline)(nil)

func (p *generationPipeline) Run(ctx context.Context, topic, locale string) (*GenerationResult, error) {
	start := p.now()

	checked, err := p.safetyCheck(topic, locale)
	if err != nil {
		return nil, err
	}

	researched, err := p.research(ctx, checked)
	if err != nil {
		return nil, err
	}

	written, err := p.write(ctx, researched)
	if err != nil {
		return nil, err
	}

	cited, err := p.extractCitations(ctx, written)
	if err != nil {
		return nil, err
	}

	scored := p.scoreConfidence(cited)

	result, err := p.persist(ctx, scored, start)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Article generated",
		zap.String("topic", topic),
		zap.String("locale", locale),
		zap.String("slug", result.Slug),
		zap.Float64("confidence_score", result.ConfidenceScore),
		zap.Duration("elapsed", p.now().Sub(start)))

	return result, nil
}

// safetyCheck gates the topic before any provider call is made.
func (p *generationPipeline) safetyCheck(topic, locale string) (SafetyCheckOutput, error) {
	if verdict := safety.Check(topic); verdict.Blocked {
		p.logger.Warn("Topic blocked by safety gate",
			zap.String("topic", topic),
			zap.String("reason", verdict.Reason))
		return SafetyCheckOutput{}, &safety.BlockedError{Reason: verdict.Reason}
	}

	return SafetyCheckOutput{Topic: topic, Locale: locale, SafetyPassed: true}, nil
}

func (p *generationPipeline) research(ctx context.Context, in SafetyCheckOutput) (ResearchOutput, error) {
	sources, err := p.researcher.Research(ctx, in.Topic)
	if err != nil {
		return ResearchOutput{}, fmt.Errorf("research stage: %w", err)
	}

	return ResearchOutput{SafetyCheckOutput: in, Sources: sources}, nil
}

func (p *generationPipeline) write(ctx context.Context, in ResearchOutput) (WriteOutput, error) {
	draft, err := p.writer.Write(ctx, in.Topic, in.Locale, in.Sources)
	if err != nil {
		return WriteOutput{}, fmt.Errorf("write stage: %w", err)
	}

	return WriteOutput{ResearchOutput: in, Draft: draft}, nil
}

func (p *generationPipeline) extractCitations(ctx context.Context, in WriteOutput) (CitationsOutput, error) {
	citations, err := p.citations.Format(ctx, in.Sources)
	if err != nil {
		return CitationsOutput{}, fmt.Errorf("citation stage: %w", err)
	}

	return CitationsOutput{WriteOutput: in, Citations: citations}, nil
}

func (p *generationPipeline) scoreConfidence(in CitationsOutput) ScoredOutput {
	return ScoredOutput{
		CitationsOutput: in,
		ConfidenceScore: safety.Score(len(in.Sources), len(in.Citations)),
	}
}

// persist writes the completed article. Generation time is measured from
// pipeline entry, not from this step.
func (p *generationPipeline) persist(ctx context.Context, in ScoredOutput, start time.Time) (*GenerationResult, error) {
	article := &models.Article{
		Slug:             models.TopicToSlug(in.Topic),
		Topic:            in.Topic,
		Locale:           in.Locale,
		Title:            in.Draft.Title,
		Summary:          in.Draft.Summary,
		Sections:         in.Draft.Sections,
		Citations:        in.Citations,
		RelatedTopics:    in.Draft.RelatedTopics,
		ModelUsed:        p.writer.Model(),
		SystemPromptUsed: p.writer.Instructions(),
		SourcesConsulted: in.Sources,
		ConfidenceScore:  in.ConfidenceScore,
		GenerationTimeMs: int(p.now().Sub(start).Milliseconds()),
		Status:           models.ArticleStatusCompleted,
	}

	if err := p.articles.InsertIgnore(ctx, article); err != nil {
		return nil, fmt.Errorf("persist stage: %w", err)
	}

	return &GenerationResult{
		Slug:            article.Slug,
		Title:           article.Title,
		ConfidenceScore: article.ConfidenceScore,
	}, nil
}
