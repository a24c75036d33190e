package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/lock"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

// LockManager is the narrow view of lock.Manager the coordinator needs.
// An interface so tests can observe acquire/release pairing.
type LockManager interface {
	TryAcquire(ctx context.Context, topic, locale string) (bool, error)
	Release(ctx context.Context, topic, locale string)
	WaitForResult(ctx context.Context, checker lock.CompletionChecker, topic, locale string, timeout time.Duration) (bool, error)
}

// ArticleResponse is what the boundary returns for a generation request.
// Cached is true both for a direct cache hit and for riding along on a peer's
// completed generation.
type ArticleResponse struct {
	Cached          bool    `json:"cached,omitempty"`
	Slug            string  `json:"slug"`
	Title           string  `json:"title"`
	ConfidenceScore float64 `json:"confidenceScore"`
}

// RequestCoordinator is the caller-facing boundary for article generation:
// check cache, try the lock, run the pipeline or wait for the peer holding it.
type RequestCoordinator interface {
	RequestArticle(ctx context.Context, topic, locale string) (*ArticleResponse, error)
}

type requestCoordinator struct {
	articles    repositories.ArticleRepository
	locks       LockManager
	pipeline    GenerationPipeline
	waitTimeout time.Duration
	logger      *zap.Logger
}

// NewRequestCoordinator creates the generation request coordinator.
func NewRequestCoordinator(
	articles repositories.ArticleRepository,
	locks LockManager,
	pipeline GenerationPipeline,
	waitTimeout time.Duration,
	logger *zap.Logger,
) RequestCoordinator {
	if waitTimeout <= 0 {
		waitTimeout = 120 * time.Second
	}
	return &requestCoordinator{
		articles:    articles,
		locks:       locks,
		pipeline:    pipeline,
		waitTimeout: waitTimeout,
		logger:      logger.Named("request-coordinator"),
	}
}

var _ RequestCoordinator = (*requestCoordinator)(nil)

func (c *requestCoordinator) RequestArticle(ctx context.Context, topic, locale string) (*ArticleResponse, error) {
	// Cache check runs before anything else; the safety gate lives inside the
	// pipeline, so even a blocked topic returns its cached row if one exists.
	cached, err := c.articles.FindCompleted(ctx, topic, locale)
	if err != nil {
		return nil, fmt.Errorf("cache lookup: %w", err)
	}
	if cached != nil {
		return &ArticleResponse{
			Cached:          true,
			Slug:            cached.Slug,
			Title:           cached.Title,
			ConfidenceScore: cached.ConfidenceScore,
		}, nil
	}

	acquired, err := c.locks.TryAcquire(ctx, topic, locale)
	if err != nil {
		return nil, fmt.Errorf("acquire generation lock: %w", err)
	}

	if !acquired {
		return c.waitForPeer(ctx, topic, locale)
	}

	// Release on every exit path. The detached context ensures the unlock
	// still runs when the request context is already cancelled.
	defer c.locks.Release(context.WithoutCancel(ctx), topic, locale)

	result, err := c.pipeline.Run(ctx, topic, locale)
	if err != nil {
		return nil, err
	}

	return &ArticleResponse{
		Slug:            result.Slug,
		Title:           result.Title,
		ConfidenceScore: result.ConfidenceScore,
	}, nil
}

// waitForPeer rides along on another process's in-flight generation, polling
// the store until its article appears or the wait deadline passes.
func (c *requestCoordinator) waitForPeer(ctx context.Context, topic, locale string) (*ArticleResponse, error) {
	c.logger.Debug("Generation lock busy, waiting for peer",
		zap.String("topic", topic),
		zap.String("locale", locale))

	appeared, err := c.locks.WaitForResult(ctx, c.articles, topic, locale, c.waitTimeout)
	if err != nil {
		return nil, fmt.Errorf("wait for peer generation: %w", err)
	}

	if appeared {
		article, err := c.articles.FindCompleted(ctx, topic, locale)
		if err != nil {
			return nil, fmt.Errorf("re-check after peer completion: %w", err)
		}
		if article != nil {
			return &ArticleResponse{
				Cached:          true,
				Slug:            article.Slug,
				Title:           article.Title,
				ConfidenceScore: article.ConfidenceScore,
			}, nil
		}
	}

	return nil, apperrors.ErrWaitTimeout
}
