package handlers

import (
	"net/http"

	"nestling/internal/database"
)

// SystemHandler serves the liveness endpoint
type SystemHandler struct {
	db *database.DB
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *database.DB) *SystemHandler {
	return &SystemHandler{db: db}
}

// Healthz handles GET /healthz
func (h *SystemHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
