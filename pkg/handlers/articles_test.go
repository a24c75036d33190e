package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/safety"
	"github.com/verifidia/verifidia-engine/pkg/services"
)

type mockArticleRepo struct {
	article *models.Article
	err     error
}

func (m *mockArticleRepo) FindCompleted(ctx context.Context, topic, locale string) (*models.Article, error) {
	return m.article, m.err
}
func (m *mockArticleRepo) FindBySlug(ctx context.Context, slug, locale string) (*models.Article, error) {
	return m.article, m.err
}
func (m *mockArticleRepo) InsertIgnore(ctx context.Context, article *models.Article) error {
	return nil
}
func (m *mockArticleRepo) CheckCachedTopics(ctx context.Context, topics []string, locale string) (map[string]string, error) {
	return nil, nil
}
func (m *mockArticleRepo) RecentCompleted(ctx context.Context, locale string, limit int) ([]*models.Article, error) {
	return nil, nil
}

type mockRelatedService struct {
	topics []services.RelatedTopic
	err    error

	lastSlug   string
	lastLocale string
}

func (m *mockRelatedService) ForSlug(ctx context.Context, slug, locale string) ([]services.RelatedTopic, error) {
	m.lastSlug = slug
	m.lastLocale = locale
	return m.topics, m.err
}

type mockRecentService struct {
	articles []services.RecentArticle
	err      error

	lastLimit int
}

func (m *mockRecentService) Recent(ctx context.Context, locale string, limit int) ([]services.RecentArticle, error) {
	m.lastLimit = limit
	return m.articles, m.err
}

func newArticlesMux(repo *mockArticleRepo, related *mockRelatedService, recent *mockRecentService) *http.ServeMux {
	mux := http.NewServeMux()
	NewArticlesHandler(repo, related, recent, zap.NewNop()).RegisterRoutes(mux)
	return mux
}

func TestGetArticle_ReturnsArticleWithBanner(t *testing.T) {
	repo := &mockArticleRepo{article: &models.Article{
		Slug:            "dna",
		Topic:           "DNA",
		Locale:          "en",
		Title:           "DNA",
		ConfidenceScore: 0.9,
		Status:          models.ArticleStatusCompleted,
	}}
	mux := newArticlesMux(repo, &mockRelatedService{}, &mockRecentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/dna?locale=en", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response ArticleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.Article)
	assert.Equal(t, "dna", response.Article.Slug)
	assert.Equal(t, safety.LevelSafe, response.Banner.Level)
}

func TestGetArticle_NotFound(t *testing.T) {
	mux := newArticlesMux(&mockArticleRepo{}, &mockRelatedService{}, &mockRecentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/missing?locale=en", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "Article not found"}`, rec.Body.String())
}

func TestRelatedTopics_ReturnsTopics(t *testing.T) {
	related := &mockRelatedService{topics: []services.RelatedTopic{
		{Name: "Chlorophyll", Slug: "chlorophyll", Cached: true},
		{Name: "Cellular Respiration", Slug: "cellular-respiration", Cached: false},
	}}
	mux := newArticlesMux(&mockArticleRepo{}, related, &mockRecentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/photosynthesis/related?locale=en", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "photosynthesis", related.lastSlug)
	assert.Equal(t, "en", related.lastLocale)

	var response struct {
		Topics []services.RelatedTopic `json:"topics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Topics, 2)
	assert.True(t, response.Topics[0].Cached)
	assert.False(t, response.Topics[1].Cached)
}

func TestRelatedTopics_DefaultLocale(t *testing.T) {
	related := &mockRelatedService{}
	mux := newArticlesMux(&mockArticleRepo{}, related, &mockRecentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/photosynthesis/related", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", related.lastLocale)
}

func TestRelatedTopics_NotFound(t *testing.T) {
	related := &mockRelatedService{err: apperrors.ErrNotFound}
	mux := newArticlesMux(&mockArticleRepo{}, related, &mockRecentService{})

	req := httptest.NewRequest(http.MethodGet, "/api/articles/missing/related?locale=en", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecent_ReturnsArticles(t *testing.T) {
	recent := &mockRecentService{articles: []services.RecentArticle{
		{Slug: "dna", Title: "DNA", ConfidenceScore: 0.9},
	}}
	mux := newArticlesMux(&mockArticleRepo{}, &mockRelatedService{}, recent)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/recent?locale=en&limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, recent.lastLimit)

	var response struct {
		Articles []services.RecentArticle `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response.Articles, 1)
	assert.Equal(t, "dna", response.Articles[0].Slug)
}

func TestRecent_InvalidLimit(t *testing.T) {
	mux := newArticlesMux(&mockArticleRepo{}, &mockRelatedService{}, &mockRecentService{})

	for _, limit := range []string{"0", "-1", "51", "abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/articles/recent?locale=en&limit="+limit, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "limit %q", limit)
	}
}

func TestRecent_NotCapturedAsSlug(t *testing.T) {
	// "recent" must route to the listing, not the slug wildcard.
	recent := &mockRecentService{}
	mux := newArticlesMux(&mockArticleRepo{}, &mockRelatedService{}, recent)

	req := httptest.NewRequest(http.MethodGet, "/api/articles/recent", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, recent.lastLimit)
}
