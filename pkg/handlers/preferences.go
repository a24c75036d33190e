package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/models"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
)

// PreferencesRequest for PUT /api/preferences/{userId}.
type PreferencesRequest struct {
	Language  string   `json:"language"`
	Theme     string   `json:"theme"`
	Bookmarks []string `json:"bookmarks"`
}

// PreferencesHandler handles per-user settings.
type PreferencesHandler struct {
	prefs  repositories.UserPreferencesRepository
	logger *zap.Logger
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(prefs repositories.UserPreferencesRepository, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		prefs:  prefs,
		logger: logger,
	}
}

// RegisterRoutes registers the preferences routes on the given mux.
func (h *PreferencesHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/preferences/{userId}", h.Get)
	mux.HandleFunc("PUT /api/preferences/{userId}", h.Put)
}

// Get handles GET /api/preferences/{userId}. Unknown users receive the
// defaults without a row being created.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	prefs, err := h.prefs.GetByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to fetch user preferences",
			zap.String("user_id", userID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch preferences"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}
	if prefs == nil {
		prefs = &models.UserPreferences{
			UserID:    userID,
			Language:  "en",
			Theme:     models.ThemeSystem,
			Bookmarks: []string{},
		}
	}

	if err := WriteJSON(w, http.StatusOK, prefs); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Put handles PUT /api/preferences/{userId}.
func (h *PreferencesHandler) Put(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")

	var req PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	theme := models.Theme(req.Theme)
	if req.Theme != "" && !models.ValidTheme(theme) {
		if err := ErrorResponse(w, http.StatusBadRequest, "Invalid theme"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	prefs := &models.UserPreferences{
		UserID:    userID,
		Language:  req.Language,
		Theme:     theme,
		Bookmarks: req.Bookmarks,
	}
	if err := h.prefs.Upsert(r.Context(), prefs); err != nil {
		h.logger.Error("Failed to save user preferences",
			zap.String("user_id", userID),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "Failed to save preferences"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, prefs); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
