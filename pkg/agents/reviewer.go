package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/llm"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/retry"
)

const reviewerInstructions = "You are a feedback reviewer for a verified encyclopedia. " +
	"Analyze user feedback and determine if article improvements are needed. " +
	"Return valid JSON only with { action: 'apply' | 'dismiss' | 'flag', reasoning: string, suggestedChange?: string }."

// ReviewInput is the feedback entry handed to the reviewer.
type ReviewInput struct {
	ArticleID    uuid.UUID
	FeedbackType models.FeedbackType
	Content      *string
	BlockIndex   *int
}

// Reviewer classifies pending feedback. Unlike the generation providers,
// malformed reviewer output is an error: the review loop surfaces it instead
// of guessing a verdict.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput) (models.FeedbackReview, error)
}

type reviewer struct {
	client   llm.Client
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewReviewer creates a Reviewer backed by the given LLM client.
func NewReviewer(client llm.Client, logger *zap.Logger) Reviewer {
	return &reviewer{
		client:   client,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("reviewer"),
	}
}

var _ Reviewer = (*reviewer)(nil)

func (r *reviewer) Review(ctx context.Context, input ReviewInput) (models.FeedbackReview, error) {
	blockIndex := "none"
	if input.BlockIndex != nil {
		blockIndex = fmt.Sprintf("%d", *input.BlockIndex)
	}
	content := "(empty)"
	if input.Content != nil && *input.Content != "" {
		content = *input.Content
	}

	prompt := strings.Join([]string{
		"Review this user feedback for an encyclopedia article and classify it.",
		fmt.Sprintf("Article ID: %s", input.ArticleID),
		fmt.Sprintf("Feedback type: %s", input.FeedbackType),
		fmt.Sprintf("Block index: %s", blockIndex),
		fmt.Sprintf("Feedback content: %s", content),
		"Return JSON only.",
	}, "\n")

	raw, err := retry.DoIfRetryable(ctx, r.retryCfg, func() (string, error) {
		return r.client.Generate(ctx, prompt, reviewerInstructions)
	})
	if err != nil {
		return models.FeedbackReview{}, fmt.Errorf("review feedback %s: %w", input.ArticleID, err)
	}

	review, err := llm.ParseResponse[models.FeedbackReview](raw)
	if err != nil {
		return models.FeedbackReview{}, fmt.Errorf("parse review response: %w", err)
	}

	switch review.Action {
	case models.ReviewActionApply, models.ReviewActionDismiss, models.ReviewActionFlag:
	default:
		return models.FeedbackReview{}, fmt.Errorf("invalid review action %q", review.Action)
	}

	return review, nil
}
