package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/cuenta/internal/optimizer"
	"github.com/Lixing-Zhang/cuenta/internal/service"
)

// OptimizeHandler handles basket optimization requests
type OptimizeHandler struct {
	service *service.OptimizeService
	log     *slog.Logger
}

// NewOptimizeHandler creates a new optimize handler
func NewOptimizeHandler(service *service.OptimizeService, log *slog.Logger) *OptimizeHandler {
	return &OptimizeHandler{
		service: service,
		log:     log,
	}
}

// Optimize handles POST /api/optimize
func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	var in service.OptimizeInput

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.log.Warn("failed to decode optimize request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	result, err := h.service.Optimize(r.Context(), in)
	if err != nil {
		var optErr *optimizer.Error

		switch {
		case errors.Is(err, service.ErrInvalidOptimizeRequest):
			h.log.Warn("invalid optimize request", "error", err)
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		case errors.Is(err, optimizer.ErrOptimizationFailed) && errors.As(err, &optErr):
			h.log.Info("optimization rejected", "status", optErr.StatusCode, "detail", optErr.Detail)
			WriteError(w, http.StatusBadRequest, optErr.Detail, h.log)
		case errors.Is(err, service.ErrOptimizerNotConfigured):
			h.log.Error("optimize called without an optimizer")
			WriteError(w, http.StatusServiceUnavailable, "Optimizer unavailable", h.log)
		default:
			h.log.Error("optimizer request failed", "error", err)
			WriteError(w, http.StatusBadGateway, "Optimizer unavailable", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, result, h.log)
	h.log.Info("basket optimized", "request_id", result.RequestID, "status", result.Status, "items_count", len(result.Items))
}
