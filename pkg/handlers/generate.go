package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/apperrors"
	"github.com/verifidia/verifidia-engine/pkg/services"
)

// GenerateRequest for POST /api/generate.
type GenerateRequest struct {
	Topic  string `json:"topic"`
	Locale string `json:"locale"`
}

// GenerateHandler handles article generation requests.
type GenerateHandler struct {
	coordinator services.RequestCoordinator
	logger      *zap.Logger
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(coordinator services.RequestCoordinator, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		coordinator: coordinator,
		logger:      logger,
	}
}

// RegisterRoutes registers the generate handler's routes on the given mux.
func (h *GenerateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/generate", h.Generate)
}

// Generate handles POST /api/generate.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = GenerateRequest{}
	}

	if req.Topic == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "topic is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if req.Locale == "" {
		if err := ErrorResponse(w, http.StatusBadRequest, "locale is required"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response, err := h.coordinator.RequestArticle(r.Context(), req.Topic, req.Locale)
	if err != nil {
		if errors.Is(err, apperrors.ErrWaitTimeout) {
			if err := ErrorResponse(w, http.StatusGatewayTimeout, "Verification timed out"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		h.logger.Error("Article generation failed",
			zap.String("topic", req.Topic),
			zap.String("locale", req.Locale),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
