package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/models"
)

func TestRecent_NoCacheFallsThroughToStore(t *testing.T) {
	article := completedArticle("DNA", "en")
	repo := &mockArticleRepo{articles: []*models.Article{article}}
	svc := NewRecentService(repo, nil, zap.NewNop())

	recent, err := svc.Recent(context.Background(), "en", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "dna", recent[0].Slug)
	assert.Equal(t, "DNA", recent[0].Title)
}

func TestRecent_DefaultsLimit(t *testing.T) {
	repo := &mockArticleRepo{}
	svc := NewRecentService(repo, nil, zap.NewNop())

	recent, err := svc.Recent(context.Background(), "en", 0)
	require.NoError(t, err)
	assert.NotNil(t, recent)
	assert.Empty(t, recent)
}

func TestRecent_LocaleScoped(t *testing.T) {
	repo := &mockArticleRepo{articles: []*models.Article{
		completedArticle("DNA", "en"),
		completedArticle("ADN", "fr"),
	}}
	svc := NewRecentService(repo, nil, zap.NewNop())

	recent, err := svc.Recent(context.Background(), "fr", 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "adn", recent[0].Slug)
}
