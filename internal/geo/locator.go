package geo

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

// DefaultNearestLimit applies when FindNearest is called without a positive limit
const DefaultNearestLimit = 5

// FindNearest returns up to limit stores ordered by distance from (lat, lon).
// A non-empty chain keeps only stores whose chain matches case-insensitively.
// Equal distances keep input order. Coordinates are not validated here.
func FindNearest(stores []models.StoreLocation, lat, lon float64, limit int, chain string) []models.NearbyStore {
	if limit <= 0 {
		limit = DefaultNearestLimit
	}

	nearby := make([]models.NearbyStore, 0, len(stores))
	for _, s := range stores {
		if chain != "" && !strings.EqualFold(s.Chain, chain) {
			continue
		}
		nearby = append(nearby, models.NearbyStore{
			StoreLocation: s,
			Distance:      Haversine(lat, lon, s.Lat, s.Lon),
		})
	}

	slices.SortStableFunc(nearby, func(a, b models.NearbyStore) int {
		return cmp.Compare(a.Distance, b.Distance)
	})

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby
}

// FilterChain returns the stores of one chain, matched case-insensitively.
// An empty chain returns all stores.
func FilterChain(stores []models.StoreLocation, chain string) []models.StoreLocation {
	out := make([]models.StoreLocation, 0, len(stores))
	for _, s := range stores {
		if chain == "" || strings.EqualFold(s.Chain, chain) {
			out = append(out, s)
		}
	}
	return out
}

// Chains returns the distinct chain labels present, sorted
func Chains(stores []models.StoreLocation) []string {
	out := make([]string, 0)
	for chain := range CountByChain(stores) {
		out = append(out, chain)
	}
	slices.Sort(out)
	return out
}

// CountByChain returns the number of stores per chain label
func CountByChain(stores []models.StoreLocation) map[string]int {
	counts := make(map[string]int)
	for _, s := range stores {
		counts[s.Chain]++
	}
	return counts
}
