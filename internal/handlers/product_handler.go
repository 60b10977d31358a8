package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
	"github.com/Lixing-Zhang/cuenta/internal/service"
)

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

// ProductListResponse is the body of GET /api/products
type ProductListResponse struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Products []models.Product `json:"products"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ListProducts handles GET /api/products
// Query parameters: category, store_id, limit, order_by, min_protein, q
// - 200: {success, count, products}
// - 400: invalid order_by, limit or min_protein
// - 500: repository failure
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q, err := parseProductQuery(r)
	if err != nil {
		h.logger.Warn("invalid product query", "query", r.URL.RawQuery, "error", err)
		WriteJSON(w, http.StatusBadRequest, failureResponse{Error: err.Error()}, h.logger)
		return
	}

	result, err := h.service.ListProducts(r.Context(), q)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			h.logger.Warn("invalid product query", "query", r.URL.RawQuery, "error", err)
			WriteJSON(w, http.StatusBadRequest, failureResponse{Error: err.Error()}, h.logger)
			return
		}

		h.logger.Error("failed to list products", "error", err)
		WriteJSON(w, http.StatusInternalServerError, failureResponse{Error: "Failed to fetch products"}, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, ProductListResponse{
		Success:  true,
		Count:    result.Count,
		Products: result.Items,
	}, h.logger)
}

func parseProductQuery(r *http.Request) (catalog.Query, error) {
	params := r.URL.Query()

	limit, err := queryInt(r, "limit", catalog.DefaultLimit)
	if err != nil || limit < 0 {
		return catalog.Query{}, errors.New("limit must be a non-negative integer")
	}

	minProtein, err := queryFloat(r, "min_protein", 0)
	if err != nil || math.IsNaN(minProtein) || math.IsInf(minProtein, 0) {
		return catalog.Query{}, errors.New("min_protein must be a number")
	}

	return catalog.Query{
		Category:   models.Category(strings.TrimSpace(params.Get("category"))),
		StoreID:    strings.TrimSpace(params.Get("store_id")),
		MinProtein: minProtein,
		OrderBy:    catalog.OrderBy(strings.TrimSpace(params.Get("order_by"))),
		Limit:      limit,
		Search:     params.Get("q"),
	}, nil
}

// ListCategories handles GET /api/products/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		WriteJSON(w, http.StatusInternalServerError, failureResponse{Error: "Failed to fetch categories"}, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"categories": categories,
	}, h.logger)
}

// GetProduct handles GET /api/products/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSpace(chi.URLParam(r, "productId"))
	if productID == "" {
		h.logger.Warn("product ID is required")
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			h.logger.Info("product not found", "productId", productID)
			WriteError(w, http.StatusNotFound, "Product not found", h.logger)
			return
		}

		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}
