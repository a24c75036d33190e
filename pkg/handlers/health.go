package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/database"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	db      *database.DB
	version string
	logger  *zap.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *database.DB, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
		logger:  logger,
	}
}

// RegisterRoutes registers the health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	statusCode := http.StatusOK

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error("Database health check failed", zap.Error(err))
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]string{
		"status":  status,
		"version": h.version,
	}
	if err := WriteJSON(w, statusCode, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
