package handlers

import (
	"log/slog"
	"net/http"
	"time"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// HealthHandler provides health check endpoint
type HealthHandler struct {
	logger *slog.Logger
	stats  func() map[string]int
}

// NewHealthHandler creates a new health handler. stats, when set, reports
// loaded data set sizes.
func NewHealthHandler(logger *slog.Logger, stats func() map[string]int) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		stats:  stats,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version"`
	Data      map[string]int `json:"data,omitempty"`
}

// ServeHTTP handles health check requests
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
	}
	if h.stats != nil {
		response.Data = h.stats()
	}

	WriteJSON(w, http.StatusOK, response, h.logger)
}
