package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verifidia/verifidia-engine/pkg/database"
	"github.com/verifidia/verifidia-engine/pkg/models"
)

// FeedbackRepository provides data access for article feedback.
type FeedbackRepository interface {
	Insert(ctx context.Context, fb *models.Feedback) error

	// GetPending returns up to limit pending entries, oldest first.
	GetPending(ctx context.Context, limit int) ([]*models.Feedback, error)

	// UpdateStatus transitions a feedback entry and stores the serialized
	// reviewer verdict, if any.
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.FeedbackStatus, reviewResult *string) error

	GetByArticle(ctx context.Context, articleID uuid.UUID) ([]*models.Feedback, error)

	// RecentApplied returns recently applied entries joined with their
	// article's title, slug and locale.
	RecentApplied(ctx context.Context, limit int) ([]*models.AppliedEdit, error)
}

type feedbackRepository struct {
	db *database.DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *database.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

var _ FeedbackRepository = (*feedbackRepository)(nil)

const feedbackColumns = `id, article_id, user_id, feedback_type, block_index, content,
	status, review_result, created_at, updated_at`

func (r *feedbackRepository) Insert(ctx context.Context, fb *models.Feedback) error {
	now := time.Now()
	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.Status == "" {
		fb.Status = models.FeedbackStatusPending
	}
	fb.CreatedAt = now
	fb.UpdatedAt = now

	query := `
		INSERT INTO feedback (
			id, article_id, user_id, feedback_type, block_index, content,
			status, review_result, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		fb.ID, fb.ArticleID, fb.UserID, fb.FeedbackType, fb.BlockIndex,
		fb.Content, fb.Status, fb.ReviewResult, fb.CreatedAt, fb.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}

	return nil
}

func (r *feedbackRepository) GetPending(ctx context.Context, limit int) ([]*models.Feedback, error) {
	query := `
		SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, models.FeedbackStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending feedback: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows)
}

func (r *feedbackRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FeedbackStatus, reviewResult *string) error {
	query := `
		UPDATE feedback
		SET status = $2, review_result = $3, updated_at = $4
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, status, reviewResult, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update feedback status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("feedback %s not found", id)
	}

	return nil
}

func (r *feedbackRepository) GetByArticle(ctx context.Context, articleID uuid.UUID) ([]*models.Feedback, error) {
	query := `
		SELECT ` + feedbackColumns + `
		FROM feedback
		WHERE article_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback for article: %w", err)
	}
	defer rows.Close()

	return collectFeedback(rows)
}

func (r *feedbackRepository) RecentApplied(ctx context.Context, limit int) ([]*models.AppliedEdit, error) {
	query := `
		SELECT f.id, f.feedback_type, f.content, f.updated_at,
			a.title, a.slug, a.locale
		FROM feedback f
		INNER JOIN articles a ON a.id = f.article_id
		WHERE f.status = $1
		ORDER BY f.updated_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, models.FeedbackStatusApplied, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied edits: %w", err)
	}
	defer rows.Close()

	edits := make([]*models.AppliedEdit, 0)
	for rows.Next() {
		var e models.AppliedEdit
		if err := rows.Scan(&e.ID, &e.FeedbackType, &e.Content, &e.UpdatedAt,
			&e.ArticleTitle, &e.ArticleSlug, &e.ArticleLocale); err != nil {
			return nil, fmt.Errorf("failed to scan applied edit: %w", err)
		}
		edits = append(edits, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applied edits: %w", err)
	}

	return edits, nil
}

func collectFeedback(rows pgx.Rows) ([]*models.Feedback, error) {
	entries := make([]*models.Feedback, 0)
	for rows.Next() {
		var f models.Feedback
		err := rows.Scan(
			&f.ID, &f.ArticleID, &f.UserID, &f.FeedbackType, &f.BlockIndex,
			&f.Content, &f.Status, &f.ReviewResult, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		entries = append(entries, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}

	return entries, nil
}
