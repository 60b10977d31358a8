package service

import (
	"context"
	"fmt"

	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
)

// CatalogService answers product listing queries
type CatalogService struct {
	repo repository.ProductRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(repo repository.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// ListProducts ranks the products matching q. The query is validated before
// the repository is touched so invalid requests never reach the database.
func (s *CatalogService) ListProducts(ctx context.Context, q catalog.Query) (catalog.Result, error) {
	q, err := catalog.Validate(q)
	if err != nil {
		return catalog.Result{}, err
	}

	products, err := s.repo.Find(ctx, q)
	if err != nil {
		return catalog.Result{}, fmt.Errorf("failed to load products: %w", err)
	}

	return catalog.Rank(products, q)
}

// Categories returns the distinct categories that have protein-bearing products
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	products, err := s.repo.Find(ctx, catalog.Query{})
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return catalog.Categories(products), nil
}

// GetProduct returns a product by ID
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}
