package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

const recentCacheTTL = 30 * time.Second

// RecentArticle is a listing summary of a recently completed article.
type RecentArticle struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Title           string    `json:"title"`
	Summary         string    `json:"summary"`
	ConfidenceScore float64   `json:"confidenceScore"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// RecentService lists recently completed articles per locale, with a
// short-TTL Redis cache in front of the store. A nil Redis client disables
// caching.
type RecentService interface {
	Recent(ctx context.Context, locale string, limit int) ([]RecentArticle, error)
}

type recentService struct {
	articles repositories.ArticleRepository
	cache    *redis.Client
	logger   *zap.Logger
}

// NewRecentService creates a RecentService.
func NewRecentService(articles repositories.ArticleRepository, cache *redis.Client, logger *zap.Logger) RecentService {
	return &recentService{
		articles: articles,
		cache:    cache,
		logger:   logger.Named("recent"),
	}
}

var _ RecentService = (*recentService)(nil)

func (s *recentService) Recent(ctx context.Context, locale string, limit int) ([]RecentArticle, error) {
	if limit <= 0 {
		limit = 10
	}

	cacheKey := fmt.Sprintf("recent:%s:%d", locale, limit)

	if s.cache != nil {
		if payload, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []RecentArticle
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("Recent cache read failed", zap.Error(err))
		}
	}

	rows, err := s.articles.RecentCompleted(ctx, locale, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}

	recent := make([]RecentArticle, 0, len(rows))
	for _, a := range rows {
		recent = append(recent, RecentArticle{
			ID:              a.ID.String(),
			Slug:            a.Slug,
			Title:           a.Title,
			Summary:         a.Summary,
			ConfidenceScore: a.ConfidenceScore,
			UpdatedAt:       a.UpdatedAt,
		})
	}

	if s.cache != nil {
		if payload, err := json.Marshal(recent); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, recentCacheTTL).Err(); err != nil {
				s.logger.Warn("Recent cache write failed", zap.Error(err))
			}
		}
	}

	return recent, nil
}
