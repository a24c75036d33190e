package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verifidia/verifidia-engine/pkg/database"
	"github.com/verifidia/verifidia-engine/pkg/models"
)

// ArticleRepository provides data access for cached articles.
type ArticleRepository interface {
	// FindCompleted returns the completed article for (topic, locale), or nil
	// when none exists. Used for the cache check and the post-wait re-check.
	FindCompleted(ctx context.Context, topic, locale string) (*models.Article, error)

	// FindBySlug returns the article for (slug, locale) regardless of status,
	// or nil when none exists.
	FindBySlug(ctx context.Context, slug, locale string) (*models.Article, error)

	// InsertIgnore inserts the article; on a unique-constraint conflict
	// (topic+locale or slug+locale) it silently no-ops. First writer wins.
	InsertIgnore(ctx context.Context, article *models.Article) error

	// CheckCachedTopics returns topic -> slug for the given topics that have
	// a completed article in the locale.
	CheckCachedTopics(ctx context.Context, topics []string, locale string) (map[string]string, error)

	// RecentCompleted returns the most recently updated completed articles
	// for a locale.
	RecentCompleted(ctx context.Context, locale string, limit int) ([]*models.Article, error)
}

type articleRepository struct {
	db *database.DB
}

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(db *database.DB) ArticleRepository {
	return &articleRepository{db: db}
}

var _ ArticleRepository = (*articleRepository)(nil)

const articleColumns = `id, slug, topic, locale, title, summary, content, citations,
	related_topics, model_used, system_prompt_used, sources_consulted,
	confidence_score, generation_time_ms, status, generated_at, updated_at`

func (r *articleRepository) FindCompleted(ctx context.Context, topic, locale string) (*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE topic = $1 AND locale = $2 AND status = $3
		LIMIT 1`

	row := r.db.QueryRow(ctx, query, topic, locale, models.ArticleStatusCompleted)
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return article, nil
}

func (r *articleRepository) FindBySlug(ctx context.Context, slug, locale string) (*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE slug = $1 AND locale = $2
		LIMIT 1`

	row := r.db.QueryRow(ctx, query, slug, locale)
	article, err := scanArticle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return article, nil
}

func (r *articleRepository) InsertIgnore(ctx context.Context, article *models.Article) error {
	now := time.Now()
	if article.ID == uuid.Nil {
		article.ID = uuid.New()
	}
	if article.GeneratedAt.IsZero() {
		article.GeneratedAt = now
	}
	article.UpdatedAt = now

	content, err := json.Marshal(article.Sections)
	if err != nil {
		return fmt.Errorf("marshal sections: %w", err)
	}
	citations, err := json.Marshal(article.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	sources, err := json.Marshal(article.SourcesConsulted)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}

	relatedTopics := article.RelatedTopics
	if relatedTopics == nil {
		relatedTopics = []string{}
	}

	query := `
		INSERT INTO articles (
			id, slug, topic, locale, title, summary, content, citations,
			related_topics, model_used, system_prompt_used, sources_consulted,
			confidence_score, generation_time_ms, status, generated_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT DO NOTHING`

	_, err = r.db.Exec(ctx, query,
		article.ID, article.Slug, article.Topic, article.Locale,
		article.Title, article.Summary, content, citations,
		relatedTopics, article.ModelUsed, article.SystemPromptUsed, sources,
		article.ConfidenceScore, article.GenerationTimeMs, article.Status,
		article.GeneratedAt, article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert article: %w", err)
	}

	return nil
}

func (r *articleRepository) CheckCachedTopics(ctx context.Context, topics []string, locale string) (map[string]string, error) {
	cached := make(map[string]string)
	if len(topics) == 0 {
		return cached, nil
	}

	query := `
		SELECT topic, slug
		FROM articles
		WHERE topic = ANY($1) AND locale = $2 AND status = $3`

	rows, err := r.db.Query(ctx, query, topics, locale, models.ArticleStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to check cached topics: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var topic, slug string
		if err := rows.Scan(&topic, &slug); err != nil {
			return nil, fmt.Errorf("failed to scan cached topic: %w", err)
		}
		cached[topic] = slug
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cached topics: %w", err)
	}

	return cached, nil
}

func (r *articleRepository) RecentCompleted(ctx context.Context, locale string, limit int) ([]*models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE status = $1 AND locale = $2
		ORDER BY updated_at DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, models.ArticleStatusCompleted, locale, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent articles: %w", err)
	}
	defer rows.Close()

	articles := make([]*models.Article, 0)
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating articles: %w", err)
	}

	return articles, nil
}

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	var content, citations, sources []byte

	err := row.Scan(
		&a.ID, &a.Slug, &a.Topic, &a.Locale, &a.Title, &a.Summary,
		&content, &citations, &a.RelatedTopics, &a.ModelUsed,
		&a.SystemPromptUsed, &sources, &a.ConfidenceScore,
		&a.GenerationTimeMs, &a.Status, &a.GeneratedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan article: %w", err)
	}

	if err := json.Unmarshal(content, &a.Sections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sections: %w", err)
	}
	if err := json.Unmarshal(citations, &a.Citations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
	}
	if err := json.Unmarshal(sources, &a.SourcesConsulted); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
	}

	return &a, nil
}
