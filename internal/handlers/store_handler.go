package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/cuenta/internal/geo"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/service"
)

// StoreHandler handles store location HTTP requests
type StoreHandler struct {
	service *service.StoreService
	logger  *slog.Logger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(service *service.StoreService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		logger:  logger,
	}
}

// StoreListResponse is the body of GET /api/stores
type StoreListResponse struct {
	Count  int                    `json:"count"`
	Stores []models.StoreLocation `json:"stores"`
}

// NearbyResponse is the body of GET /api/stores/nearby
type NearbyResponse struct {
	Count  int                  `json:"count"`
	Stores []models.NearbyStore `json:"stores"`
}

// ChainsResponse is the body of GET /api/stores/chains
type ChainsResponse struct {
	Chains []string       `json:"chains"`
	Counts map[string]int `json:"counts"`
}

// ZipResponse is the body of GET /api/stores/zip. Zip is null when unknown.
type ZipResponse struct {
	Zip *string `json:"zip"`
}

// ListStores handles GET /api/stores?chain=
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores := h.service.Stores(strings.TrimSpace(r.URL.Query().Get("chain")))
	WriteJSON(w, http.StatusOK, StoreListResponse{Count: len(stores), Stores: stores}, h.logger)
}

// ListChains handles GET /api/stores/chains
func (h *StoreHandler) ListChains(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, ChainsResponse{
		Chains: h.service.Chains(),
		Counts: h.service.CountByChain(),
	}, h.logger)
}

// Nearby handles GET /api/stores/nearby
// Either lat and lon, or location_error when the client could not obtain a position.
// - 200: stores ordered by distance
// - 400: missing or invalid coordinates
// - 422: location_error, with the user-facing message
func (h *StoreHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	if code := strings.TrimSpace(r.URL.Query().Get("location_error")); code != "" {
		failure := geo.ParseLocationFailure(code)
		h.logger.Info("client location unavailable", "code", code, "reason", failure.Message())
		WriteError(w, http.StatusUnprocessableEntity, failure.Message(), h.logger)
		return
	}

	lat, lon, err := queryCoordinates(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "lat and lon are required numbers", h.logger)
		return
	}

	limit, err := queryInt(r, "limit", geo.DefaultNearestLimit)
	if err != nil || limit < 0 {
		WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer", h.logger)
		return
	}

	stores, err := h.service.Nearby(lat, lon, limit, strings.TrimSpace(r.URL.Query().Get("chain")))
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			WriteError(w, http.StatusBadRequest, "Invalid coordinates", h.logger)
			return
		}

		h.logger.Error("failed to find nearby stores", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, NearbyResponse{Count: len(stores), Stores: stores}, h.logger)
}

// Zip handles GET /api/stores/zip. Geocoder failures yield {"zip": null}.
func (h *StoreHandler) Zip(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := queryCoordinates(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "lat and lon are required numbers", h.logger)
		return
	}

	zip, ok, err := h.service.ZipCode(r.Context(), lat, lon)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid coordinates", h.logger)
		return
	}

	var resp ZipResponse
	if ok {
		resp.Zip = &zip
	}
	WriteJSON(w, http.StatusOK, resp, h.logger)
}
