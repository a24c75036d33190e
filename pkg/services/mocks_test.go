package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verifidia/verifidia-engine/pkg/agents"
	"github.com/verifidia/verifidia-engine/pkg/lock"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

// mockArticleRepo is an in-memory ArticleRepository for service tests.
type mockArticleRepo struct {
	articles []*models.Article

	findCompletedErr error
	insertErr        error

	findCompletedCalls int
	insertCalls        int
	inserted           []*models.Article
}

var _ repositories.ArticleRepository = (*mockArticleRepo)(nil)

func (m *mockArticleRepo) FindCompleted(ctx context.Context, topic, locale string) (*models.Article, error) {
	m.findCompletedCalls++
	if m.findCompletedErr != nil {
		return nil, m.findCompletedErr
	}
	for _, a := range m.articles {
		if a.Topic == topic && a.Locale == locale && a.Status == models.ArticleStatusCompleted {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockArticleRepo) FindBySlug(ctx context.Context, slug, locale string) (*models.Article, error) {
	for _, a := range m.articles {
		if a.Slug == slug && a.Locale == locale {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockArticleRepo) InsertIgnore(ctx context.Context, article *models.Article) error {
	m.insertCalls++
	if m.insertErr != nil {
		return m.insertErr
	}
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	for _, existing := range m.articles {
		if existing.Topic == article.Topic && existing.Locale == article.Locale {
			return nil // conflict, first writer wins
		}
	}
	m.articles = append(m.articles, article)
	m.inserted = append(m.inserted, article)
	return nil
}

func (m *mockArticleRepo) CheckCachedTopics(ctx context.Context, topics []string, locale string) (map[string]string, error) {
	cached := make(map[string]string)
	for _, topic := range topics {
		for _, a := range m.articles {
			if a.Topic == topic && a.Locale == locale && a.Status == models.ArticleStatusCompleted {
				cached[topic] = a.Slug
			}
		}
	}
	return cached, nil
}

func (m *mockArticleRepo) RecentCompleted(ctx context.Context, locale string, limit int) ([]*models.Article, error) {
	recent := make([]*models.Article, 0)
	for _, a := range m.articles {
		if a.Locale == locale && a.Status == models.ArticleStatusCompleted {
			recent = append(recent, a)
		}
		if len(recent) == limit {
			break
		}
	}
	return recent, nil
}

// mockLockManager scripts lock behavior for coordinator tests.
type mockLockManager struct {
	acquired   bool
	acquireErr error
	waitResult bool
	waitErr    error

	tryAcquireCalls int
	releaseCalls    int
	waitCalls       int
}

var _ LockManager = (*mockLockManager)(nil)

func (m *mockLockManager) TryAcquire(ctx context.Context, topic, locale string) (bool, error) {
	m.tryAcquireCalls++
	return m.acquired, m.acquireErr
}

func (m *mockLockManager) Release(ctx context.Context, topic, locale string) {
	m.releaseCalls++
}

func (m *mockLockManager) WaitForResult(ctx context.Context, checker lock.CompletionChecker, topic, locale string, timeout time.Duration) (bool, error) {
	m.waitCalls++
	return m.waitResult, m.waitErr
}

// mockPipeline scripts the generation pipeline for coordinator tests.
type mockPipeline struct {
	result *GenerationResult
	err    error
	calls  int
}

var _ GenerationPipeline = (*mockPipeline)(nil)

func (m *mockPipeline) Run(ctx context.Context, topic, locale string) (*GenerationResult, error) {
	m.calls++
	return m.result, m.err
}

// mockFeedbackRepo is an in-memory FeedbackRepository for review tests.
type mockFeedbackRepo struct {
	pending []*models.Feedback

	insertErr error
	updateErr error

	updates map[uuid.UUID]models.FeedbackStatus
	results map[uuid.UUID]string
}

var _ repositories.FeedbackRepository = (*mockFeedbackRepo)(nil)

func (m *mockFeedbackRepo) Insert(ctx context.Context, feedback *models.Feedback) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	if feedback.ID == uuid.Nil {
		feedback.ID = uuid.New()
	}
	m.pending = append(m.pending, feedback)
	return nil
}

func (m *mockFeedbackRepo) GetPending(ctx context.Context, limit int) ([]*models.Feedback, error) {
	if limit > len(m.pending) {
		limit = len(m.pending)
	}
	return m.pending[:limit], nil
}

func (m *mockFeedbackRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.FeedbackStatus, reviewResult *string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updates == nil {
		m.updates = make(map[uuid.UUID]models.FeedbackStatus)
		m.results = make(map[uuid.UUID]string)
	}
	m.updates[id] = status
	if reviewResult != nil {
		m.results[id] = *reviewResult
	}
	return nil
}

func (m *mockFeedbackRepo) GetByArticle(ctx context.Context, articleID uuid.UUID) ([]*models.Feedback, error) {
	matched := make([]*models.Feedback, 0)
	for _, f := range m.pending {
		if f.ArticleID == articleID {
			matched = append(matched, f)
		}
	}
	return matched, nil
}

func (m *mockFeedbackRepo) RecentApplied(ctx context.Context, limit int) ([]*models.AppliedEdit, error) {
	return []*models.AppliedEdit{}, nil
}

// mockReviewer scripts reviewer verdicts keyed by feedback content.
type mockReviewer struct {
	reviewFunc func(input agents.ReviewInput) (models.FeedbackReview, error)
	calls      int
}

var _ agents.Reviewer = (*mockReviewer)(nil)

func (m *mockReviewer) Review(ctx context.Context, input agents.ReviewInput) (models.FeedbackReview, error) {
	m.calls++
	if m.reviewFunc != nil {
		return m.reviewFunc(input)
	}
	return models.FeedbackReview{Action: models.ReviewActionFlag, Reasoning: "default"}, nil
}
