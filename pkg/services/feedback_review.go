package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/agents"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

// ReviewSummary reports one review run over the pending feedback queue.
type ReviewSummary struct {
	Reviewed  int `json:"reviewed"`
	Applied   int `json:"applied"`
	Dismissed int `json:"dismissed"`
	Flagged   int `json:"flagged"`
}

// FeedbackSubmission is a validated end-user feedback request.
type FeedbackSubmission struct {
	ArticleID    uuid.UUID
	FeedbackType models.FeedbackType
	Content      *string
	BlockIndex   *int
	UserID       *string
}

// FeedbackService accepts user feedback and runs the AI review queue over
// pending entries.
type FeedbackService interface {
	Submit(ctx context.Context, submission FeedbackSubmission) (uuid.UUID, error)

	// ReviewPending processes pending feedback oldest-first: the reviewer's
	// verdict maps apply->applied, dismiss->dismissed, flag->reviewed.
	ReviewPending(ctx context.Context) (*ReviewSummary, error)
}

type feedbackService struct {
	feedback  repositories.FeedbackRepository
	reviewer  agents.Reviewer
	batchSize int
	logger    *zap.Logger
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(
	feedback repositories.FeedbackRepository,
	reviewer agents.Reviewer,
	batchSize int,
	logger *zap.Logger,
) FeedbackService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &feedbackService{
		feedback:  feedback,
		reviewer:  reviewer,
		batchSize: batchSize,
		logger:    logger.Named("feedback-service"),
	}
}

var _ FeedbackService = (*feedbackService)(nil)

func (s *feedbackService) Submit(ctx context.Context, submission FeedbackSubmission) (uuid.UUID, error) {
	entry := &models.Feedback{
		ArticleID:    submission.ArticleID,
		UserID:       submission.UserID,
		FeedbackType: submission.FeedbackType,
		BlockIndex:   submission.BlockIndex,
		Content:      submission.Content,
		Status:       models.FeedbackStatusPending,
	}

	if err := s.feedback.Insert(ctx, entry); err != nil {
		return uuid.Nil, fmt.Errorf("submit feedback: %w", err)
	}

	return entry.ID, nil
}

func (s *feedbackService) ReviewPending(ctx context.Context) (*ReviewSummary, error) {
	pending, err := s.feedback.GetPending(ctx, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("fetch pending feedback: %w", err)
	}

	summary := &ReviewSummary{Reviewed: len(pending)}

	for _, entry := range pending {
		review, err := s.reviewer.Review(ctx, agents.ReviewInput{
			ArticleID:    entry.ArticleID,
			FeedbackType: entry.FeedbackType,
			Content:      entry.Content,
			BlockIndex:   entry.BlockIndex,
		})
		if err != nil {
			return nil, fmt.Errorf("review feedback %s: %w", entry.ID, err)
		}

		var status models.FeedbackStatus
		switch review.Action {
		case models.ReviewActionApply:
			status = models.FeedbackStatusApplied
			summary.Applied++
		case models.ReviewActionDismiss:
			status = models.FeedbackStatusDismissed
			summary.Dismissed++
		default:
			status = models.FeedbackStatusReviewed
			summary.Flagged++
		}

		verdict, err := json.Marshal(review)
		if err != nil {
			return nil, fmt.Errorf("serialize review verdict: %w", err)
		}
		verdictStr := string(verdict)

		if err := s.feedback.UpdateStatus(ctx, entry.ID, status, &verdictStr); err != nil {
			return nil, fmt.Errorf("update feedback %s: %w", entry.ID, err)
		}

		s.logger.Debug("Feedback reviewed",
			zap.String("feedback_id", entry.ID.String()),
			zap.String("action", string(review.Action)),
			zap.String("status", string(status)))
	}

	return summary, nil
}
