package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/models"
)

func TestRelatedTopics_MixedCachedAndUncached(t *testing.T) {
	article := completedArticle("Photosynthesis", "en")
	article.RelatedTopics = []string{"Chlorophyll", "Cellular Respiration"}

	cachedRelated := completedArticle("Chlorophyll", "en")

	repo := &mockArticleRepo{articles: []*models.Article{article, cachedRelated}}
	svc := NewRelatedTopicsService(repo, zap.NewNop())

	topics, err := svc.ForSlug(context.Background(), "photosynthesis", "en")
	require.NoError(t, err)
	require.Len(t, topics, 2)

	assert.Equal(t, RelatedTopic{Name: "Chlorophyll", Slug: "chlorophyll", Cached: true}, topics[0])
	assert.Equal(t, RelatedTopic{Name: "Cellular Respiration", Slug: "cellular-respiration", Cached: false}, topics[1])
}

func TestRelatedTopics_UnknownSlug(t *testing.T) {
	repo := &mockArticleRepo{}
	svc := NewRelatedTopicsService(repo, zap.NewNop())

	_, err := svc.ForSlug(context.Background(), "missing", "en")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRelatedTopics_EmptyRelatedList(t *testing.T) {
	article := completedArticle("Photosynthesis", "en")
	article.RelatedTopics = []string{}

	repo := &mockArticleRepo{articles: []*models.Article{article}}
	svc := NewRelatedTopicsService(repo, zap.NewNop())

	topics, err := svc.ForSlug(context.Background(), "photosynthesis", "en")
	require.NoError(t, err)
	assert.NotNil(t, topics)
	assert.Empty(t, topics)
}

func TestRelatedTopics_LocaleScoped(t *testing.T) {
	article := completedArticle("Photosynthesis", "en")
	article.RelatedTopics = []string{"Chlorophyll"}

	// Same topic cached in another locale must not count as cached here.
	otherLocale := completedArticle("Chlorophyll", "de")

	repo := &mockArticleRepo{articles: []*models.Article{article, otherLocale}}
	svc := NewRelatedTopicsService(repo, zap.NewNop())

	topics, err := svc.ForSlug(context.Background(), "photosynthesis", "en")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.False(t, topics[0].Cached)
}
