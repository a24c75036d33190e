package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
	"github.com/verifidia/verifidia-engine/pkg/safety"
	"github.com/verifidia/verifidia-engine/pkg/services"
)

// ArticleResponse is the full article payload with its display banner.
type ArticleResponse struct {
	Article *models.Article         `json:"article"`
	Banner  safety.ConfidenceBanner `json:"banner"`
}

// ArticlesHandler serves cached article reads.
type ArticlesHandler struct {
	articles repositories.ArticleRepository
	related  services.RelatedTopicsService
	recent   services.RecentService
	logger   *zap.Logger
}

// NewArticlesHandler creates a new articles handler.
func NewArticlesHandler(
	articles repositories.ArticleRepository,
	related services.RelatedTopicsService,
	recent services.RecentService,
	logger *zap.Logger,
) *ArticlesHandler {
	return &ArticlesHandler{
		articles: articles,
		related:  related,
		recent:   recent,
		logger:   logger,
	}
}

// RegisterRoutes registers the article read routes on the given mux.
// The literal "recent" segment must be registered before the slug wildcard
// so it is not captured as a slug.
func (h *ArticlesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/articles/recent", h.Recent)
	mux.HandleFunc("GET /api/articles/{slug}", h.GetArticle)
	mux.HandleFunc("GET /api/articles/{slug}/related", h.RelatedTopics)
}

// GetArticle handles GET /api/articles/{slug}?locale=.
func (h *ArticlesHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "en"
	}

	article, err := h.articles.FindBySlug(r.Context(), slug, locale)
	if err != nil {
		h.logger.Error("Failed to fetch article",
			zap.String("slug", slug),
			zap.String("locale", locale),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch article"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if article == nil {
		if err := ErrorResponse(w, http.StatusNotFound, "Article not found"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ArticleResponse{
		Article: article,
		Banner:  safety.Banner(article.ConfidenceScore),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RelatedTopics handles GET /api/articles/{slug}/related?locale=.
func (h *ArticlesHandler) RelatedTopics(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "en"
	}

	topics, err := h.related.ForSlug(r.Context(), slug, locale)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "Article not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Failed to resolve related topics",
			zap.String("slug", slug),
			zap.String("locale", locale),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch related topics"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"topics": topics}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Recent handles GET /api/articles/recent?locale=&limit=.
func (h *ArticlesHandler) Recent(w http.ResponseWriter, r *http.Request) {
	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = "en"
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 50 {
			if err := ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 50"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	articles, err := h.recent.Recent(r.Context(), locale, limit)
	if err != nil {
		h.logger.Error("Failed to list recent articles",
			zap.String("locale", locale),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch recent articles"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"articles": articles}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
