package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/testhelpers"
)

// seedArticle inserts an article for feedback rows to reference; the schema
// enforces the foreign key.
func seedArticle(t *testing.T, repo ArticleRepository, topic string) *models.Article {
	t.Helper()
	article := testArticle(topic, "en")
	require.NoError(t, repo.InsertIgnore(context.Background(), article))
	return article
}

func TestFeedbackRepository_InsertAndGetPending(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.TruncateAll(t, db.DB)
	articles := NewArticleRepository(db.DB)
	repo := NewFeedbackRepository(db.DB)
	ctx := context.Background()

	article := seedArticle(t, articles, "Photosynthesis")

	content := "The second paragraph is outdated."
	blockIndex := 1
	fb := &models.Feedback{
		ArticleID:    article.ID,
		FeedbackType: models.FeedbackTypeBlockFeedback,
		BlockIndex:   &blockIndex,
		Content:      &content,
	}
	require.NoError(t, repo.Insert(ctx, fb))
	assert.NotEqual(t, uuid.Nil, fb.ID)
	assert.Equal(t, models.FeedbackStatusPending, fb.Status)

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, fb.ID, pending[0].ID)
	require.NotNil(t, pending[0].BlockIndex)
	assert.Equal(t, 1, *pending[0].BlockIndex)
	require.NotNil(t, pending[0].Content)
	assert.Equal(t, content, *pending[0].Content)
	assert.Nil(t, pending[0].UserID)
}

func TestFeedbackRepository_GetPendingOldestFirst(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.TruncateAll(t, db.DB)
	articles := NewArticleRepository(db.DB)
	repo := NewFeedbackRepository(db.DB)
	ctx := context.Background()

	article := seedArticle(t, articles, "DNA")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		fb := &models.Feedback{ArticleID: article.ID, FeedbackType: models.FeedbackTypeThumbsDown}
		require.NoError(t, repo.Insert(ctx, fb))
		ids = append(ids, fb.ID)
	}

	pending, err := repo.GetPending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, ids[1], pending[1].ID)
}

func TestFeedbackRepository_UpdateStatus(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.TruncateAll(t, db.DB)
	articles := NewArticleRepository(db.DB)
	repo := NewFeedbackRepository(db.DB)
	ctx := context.Background()

	article := seedArticle(t, articles, "DNA")
	fb := &models.Feedback{ArticleID: article.ID, FeedbackType: models.FeedbackTypeThumbsUp}
	require.NoError(t, repo.Insert(ctx, fb))

	verdict := `{"action":"dismiss","reasoning":"positive feedback"}`
	require.NoError(t, repo.UpdateStatus(ctx, fb.ID, models.FeedbackStatusDismissed, &verdict))

	pending, err := repo.GetPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := repo.GetByArticle(ctx, article.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.FeedbackStatusDismissed, all[0].Status)
	require.NotNil(t, all[0].ReviewResult)
	assert.JSONEq(t, verdict, *all[0].ReviewResult)
}

func TestFeedbackRepository_UpdateStatusUnknownID(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.TruncateAll(t, db.DB)
	repo := NewFeedbackRepository(db.DB)

	err := repo.UpdateStatus(context.Background(), uuid.New(), models.FeedbackStatusApplied, nil)
	assert.ErrorContains(t, err, "not found")
}

func TestFeedbackRepository_RecentApplied(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.TruncateAll(t, db.DB)
	articles := NewArticleRepository(db.DB)
	repo := NewFeedbackRepository(db.DB)
	ctx := context.Background()

	article := seedArticle(t, articles, "Photosynthesis")

	content := "fixed a typo"
	applied := &models.Feedback{ArticleID: article.ID, FeedbackType: models.FeedbackTypeArticleFeedback, Content: &content}
	require.NoError(t, repo.Insert(ctx, applied))
	require.NoError(t, repo.UpdateStatus(ctx, applied.ID, models.FeedbackStatusApplied, nil))

	// A still-pending entry must not show up.
	pending := &models.Feedback{ArticleID: article.ID, FeedbackType: models.FeedbackTypeThumbsDown}
	require.NoError(t, repo.Insert(ctx, pending))

	edits, err := repo.RecentApplied(ctx, 10)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	assert.Equal(t, applied.ID, edits[0].ID)
	assert.Equal(t, "Photosynthesis", edits[0].ArticleTitle)
	assert.Equal(t, "photosynthesis", edits[0].ArticleSlug)
	assert.Equal(t, "en", edits[0].ArticleLocale)
}
