package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/agents"
	"github.com/verifidia/verifidia-engine/pkg/models"
)

func pendingFeedback(content string) *models.Feedback {
	return &models.Feedback{
		ID:           uuid.New(),
		ArticleID:    uuid.New(),
		FeedbackType: models.FeedbackTypeArticleFeedback,
		Content:      &content,
		Status:       models.FeedbackStatusPending,
	}
}

func TestFeedbackService_Submit(t *testing.T) {
	repo := &mockFeedbackRepo{}
	svc := NewFeedbackService(repo, &mockReviewer{}, 50, zap.NewNop())

	content := "The date is wrong."
	id, err := svc.Submit(context.Background(), FeedbackSubmission{
		ArticleID:    uuid.New(),
		FeedbackType: models.FeedbackTypeArticleFeedback,
		Content:      &content,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	require.Len(t, repo.pending, 1)
	assert.Equal(t, models.FeedbackStatusPending, repo.pending[0].Status)
}

func TestFeedbackService_SubmitError(t *testing.T) {
	repo := &mockFeedbackRepo{insertErr: errors.New("connection lost")}
	svc := NewFeedbackService(repo, &mockReviewer{}, 50, zap.NewNop())

	_, err := svc.Submit(context.Background(), FeedbackSubmission{
		ArticleID:    uuid.New(),
		FeedbackType: models.FeedbackTypeThumbsUp,
	})
	assert.ErrorContains(t, err, "submit feedback")
}

func TestFeedbackService_ReviewPendingMapsVerdicts(t *testing.T) {
	apply := pendingFeedback("fix the date")
	dismiss := pendingFeedback("nonsense")
	flag := pendingFeedback("needs a human")
	repo := &mockFeedbackRepo{pending: []*models.Feedback{apply, dismiss, flag}}

	reviewer := &mockReviewer{reviewFunc: func(input agents.ReviewInput) (models.FeedbackReview, error) {
		switch *input.Content {
		case "fix the date":
			return models.FeedbackReview{Action: models.ReviewActionApply, Reasoning: "valid"}, nil
		case "nonsense":
			return models.FeedbackReview{Action: models.ReviewActionDismiss, Reasoning: "spam"}, nil
		default:
			return models.FeedbackReview{Action: models.ReviewActionFlag, Reasoning: "unsure"}, nil
		}
	}}

	svc := NewFeedbackService(repo, reviewer, 50, zap.NewNop())
	summary, err := svc.ReviewPending(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Reviewed)
	assert.Equal(t, 1, summary.Applied)
	assert.Equal(t, 1, summary.Dismissed)
	assert.Equal(t, 1, summary.Flagged)

	assert.Equal(t, models.FeedbackStatusApplied, repo.updates[apply.ID])
	assert.Equal(t, models.FeedbackStatusDismissed, repo.updates[dismiss.ID])
	assert.Equal(t, models.FeedbackStatusReviewed, repo.updates[flag.ID])

	// The serialized verdict is stored alongside the status.
	assert.Contains(t, repo.results[apply.ID], `"apply"`)
	assert.Contains(t, repo.results[apply.ID], "valid")
}

func TestFeedbackService_ReviewPendingEmptyQueue(t *testing.T) {
	repo := &mockFeedbackRepo{}
	reviewer := &mockReviewer{}
	svc := NewFeedbackService(repo, reviewer, 50, zap.NewNop())

	summary, err := svc.ReviewPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &ReviewSummary{}, summary)
	assert.Equal(t, 0, reviewer.calls)
}

func TestFeedbackService_BatchSizeLimitsRun(t *testing.T) {
	repo := &mockFeedbackRepo{pending: []*models.Feedback{
		pendingFeedback("a"), pendingFeedback("b"), pendingFeedback("c"),
	}}
	reviewer := &mockReviewer{}
	svc := NewFeedbackService(repo, reviewer, 2, zap.NewNop())

	summary, err := svc.ReviewPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Reviewed)
	assert.Equal(t, 2, reviewer.calls)
}

func TestFeedbackService_ReviewerErrorAbortsRun(t *testing.T) {
	repo := &mockFeedbackRepo{pending: []*models.Feedback{pendingFeedback("a")}}
	reviewer := &mockReviewer{reviewFunc: func(input agents.ReviewInput) (models.FeedbackReview, error) {
		return models.FeedbackReview{}, errors.New("parse review response: no json")
	}}
	svc := NewFeedbackService(repo, reviewer, 50, zap.NewNop())

	_, err := svc.ReviewPending(context.Background())
	assert.ErrorContains(t, err, "review feedback")
	assert.Empty(t, repo.updates)
}
