package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

// RelatedTopic is one entry of an article's related-topics listing. Slug
// points at the cached article when one exists, otherwise at the slug a
// future generation would use.
type RelatedTopic struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Cached bool   `json:"cached"`
}

// RelatedTopicsService resolves an article's related topics against the
// cache.
type RelatedTopicsService interface {
	ForSlug(ctx context.Context, slug, locale string) ([]RelatedTopic, error)
}

type relatedTopicsService struct {
	articles repositories.ArticleRepository
	logger   *zap.Logger
}

// NewRelatedTopicsService creates a RelatedTopicsService.
func NewRelatedTopicsService(articles repositories.ArticleRepository, logger *zap.Logger) RelatedTopicsService {
	return &relatedTopicsService{
		articles: articles,
		logger:   logger.Named("related-topics"),
	}
}

var _ RelatedTopicsService = (*relatedTopicsService)(nil)

func (s *relatedTopicsService) ForSlug(ctx context.Context, slug, locale string) ([]RelatedTopic, error) {
	article, err := s.articles.FindBySlug(ctx, slug, locale)
	if err != nil {
		return nil, fmt.Errorf("find article %q: %w", slug, err)
	}
	if article == nil {
		return nil, apperrors.ErrNotFound
	}

	cached, err := s.articles.CheckCachedTopics(ctx, article.RelatedTopics, locale)
	if err != nil {
		return nil, fmt.Errorf("check cached topics: %w", err)
	}

	topics := make([]RelatedTopic, 0, len(article.RelatedTopics))
	for _, topic := range article.RelatedTopics {
		if cachedSlug, ok := cached[topic]; ok {
			topics = append(topics, RelatedTopic{Name: topic, Slug: cachedSlug, Cached: true})
			continue
		}
		topics = append(topics, RelatedTopic{Name: topic, Slug: models.TopicToSlug(topic), Cached: false})
	}

	return topics, nil
}
