package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/Lixing-Zhang/cuenta/internal/geo"
	"github.com/Lixing-Zhang/cuenta/internal/geocode"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
)

// StoreService serves nearest-store lookups over a store table that is
// loaded once and never modified afterwards
type StoreService struct {
	stores   []models.StoreLocation
	geocoder geocode.ZipResolver
}

// NewStoreService creates a store service over a copy of stores.
// geocoder may be nil, in which case ZIP lookups always miss.
func NewStoreService(stores []models.StoreLocation, geocoder geocode.ZipResolver) *StoreService {
	return &StoreService{
		stores:   slices.Clone(stores),
		geocoder: geocoder,
	}
}

// LoadStoreService reads the store table from repo
func LoadStoreService(ctx context.Context, repo repository.StoreRepository, geocoder geocode.ZipResolver) (*StoreService, error) {
	stores, err := repo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stores: %w", err)
	}
	return NewStoreService(stores, geocoder), nil
}

// Nearby returns the closest stores to a validated coordinate
func (s *StoreService) Nearby(lat, lon float64, limit int, chain string) ([]models.NearbyStore, error) {
	if err := geo.ValidateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	return geo.FindNearest(s.stores, lat, lon, limit, chain), nil
}

// Stores lists the store table, optionally restricted to one chain
func (s *StoreService) Stores(chain string) []models.StoreLocation {
	return geo.FilterChain(s.stores, chain)
}

// Chains returns the sorted chain labels
func (s *StoreService) Chains() []string {
	return geo.Chains(s.stores)
}

// CountByChain returns the number of stores per chain
func (s *StoreService) CountByChain() map[string]int {
	return geo.CountByChain(s.stores)
}

// Len returns the size of the store table
func (s *StoreService) Len() int {
	return len(s.stores)
}

// ZipCode reverse geocodes a coordinate. A geocoder failure is not an error:
// it reports ok=false.
func (s *StoreService) ZipCode(ctx context.Context, lat, lon float64) (zip string, ok bool, err error) {
	if err := geo.ValidateCoordinates(lat, lon); err != nil {
		return "", false, err
	}
	if s.geocoder == nil {
		return "", false, nil
	}
	zip, ok = s.geocoder.ZipFromCoordinates(ctx, lat, lon)
	return zip, ok, nil
}
