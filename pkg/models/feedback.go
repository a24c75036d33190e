package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackType classifies a piece of user feedback.
type FeedbackType string

const (
	FeedbackTypeThumbsUp        FeedbackType = "thumbs_up"
	FeedbackTypeThumbsDown      FeedbackType = "thumbs_down"
	FeedbackTypeBlockFeedback   FeedbackType = "block_feedback"
	FeedbackTypeArticleFeedback FeedbackType = "article_feedback"
)

// ValidFeedbackType reports whether t is one of the known feedback types.
func ValidFeedbackType(t FeedbackType) bool {
	switch t {
	case FeedbackTypeThumbsUp, FeedbackTypeThumbsDown, FeedbackTypeBlockFeedback, FeedbackTypeArticleFeedback:
		return true
	}
	return false
}

// FeedbackStatus is the review lifecycle state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackStatusPending   FeedbackStatus = "pending"
	FeedbackStatusReviewed  FeedbackStatus = "reviewed"
	FeedbackStatusApplied   FeedbackStatus = "applied"
	FeedbackStatusDismissed FeedbackStatus = "dismissed"
)

// Feedback is user or system commentary on an article. UserID is nil for
// anonymous submissions. BlockIndex is meaningful only for block_feedback.
type Feedback struct {
	ID           uuid.UUID      `json:"id"`
	ArticleID    uuid.UUID      `json:"articleId"`
	UserID       *string        `json:"userId,omitempty"`
	FeedbackType FeedbackType   `json:"feedbackType"`
	BlockIndex   *int           `json:"blockIndex,omitempty"`
	Content      *string        `json:"content,omitempty"`
	Status       FeedbackStatus `json:"status"`
	ReviewResult *string        `json:"reviewResult,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// ReviewAction is the feedback reviewer's verdict.
type ReviewAction string

const (
	ReviewActionApply   ReviewAction = "apply"
	ReviewActionDismiss ReviewAction = "dismiss"
	ReviewActionFlag    ReviewAction = "flag"
)

// FeedbackReview is the parsed reviewer output for one feedback entry.
type FeedbackReview struct {
	Action          ReviewAction `json:"action"`
	Reasoning       string       `json:"reasoning"`
	SuggestedChange string       `json:"suggestedChange,omitempty"`
}

// AppliedEdit is an applied feedback entry joined with its article, for the
// recent-edits listing.
type AppliedEdit struct {
	ID            uuid.UUID    `json:"id"`
	FeedbackType  FeedbackType `json:"feedbackType"`
	Content       *string      `json:"content,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	ArticleTitle  string       `json:"articleTitle"`
	ArticleSlug   string       `json:"articleSlug"`
	ArticleLocale string       `json:"articleLocale"`
}
