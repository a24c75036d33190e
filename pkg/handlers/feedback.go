package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
	"github.com/verifidia/verifidia-engine/pkg/services"
)

// FeedbackRequest for POST /api/feedback.
type FeedbackRequest struct {
	ArticleID    string  `json:"articleId"`
	FeedbackType string  `json:"feedbackType"`
	Content      *string `json:"content,omitempty"`
	BlockIndex   *int    `json:"blockIndex,omitempty"`
	UserID       *string `json:"userId,omitempty"`
}

// FeedbackHandler handles feedback submission and the review queue.
type FeedbackHandler struct {
	feedback services.FeedbackService
	repo     repositories.FeedbackRepository
	logger   *zap.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(
	feedback services.FeedbackService,
	repo repositories.FeedbackRepository,
	logger *zap.Logger,
) *FeedbackHandler {
	return &FeedbackHandler{
		feedback: feedback,
		repo:     repo,
		logger:   logger,
	}
}

// RegisterRoutes registers the feedback routes on the given mux.
func (h *FeedbackHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/feedback", h.Submit)
	mux.HandleFunc("POST /api/feedback/review", h.Review)
	mux.HandleFunc("GET /api/feedback/applied", h.RecentApplied)
}

// Submit handles POST /api/feedback.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	articleID, err := uuid.Parse(req.ArticleID)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "articleId must be a valid UUID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	feedbackType := models.FeedbackType(req.FeedbackType)
	if !models.ValidFeedbackType(feedbackType) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid feedback type"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	feedbackID, err := h.feedback.Submit(r.Context(), services.FeedbackSubmission{
		ArticleID:    articleID,
		FeedbackType: feedbackType,
		Content:      req.Content,
		BlockIndex:   req.BlockIndex,
		UserID:       req.UserID,
	})
	if err != nil {
		h.logger.Error("Failed to submit feedback",
			zap.String("article_id", articleID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to submit feedback"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := map[string]interface{}{
		"success":    true,
		"feedbackId": feedbackID.String(),
	}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Review handles POST /api/feedback/review. It drains one batch of pending
// feedback through the AI reviewer and reports the outcome counts.
func (h *FeedbackHandler) Review(w http.ResponseWriter, r *http.Request) {
	summary, err := h.feedback.ReviewPending(r.Context())
	if err != nil {
		h.logger.Error("Feedback review run failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Feedback review failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, summary); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// RecentApplied handles GET /api/feedback/applied?limit=.
func (h *FeedbackHandler) RecentApplied(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			if err := ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	edits, err := h.repo.RecentApplied(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list applied edits", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch applied edits"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, map[string]interface{}{"edits": edits}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
