package repository

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Lixing-Zhang/cuenta/internal/geo"
	"github.com/Lixing-Zhang/cuenta/internal/models"
)

//go:embed data/houston_stores.yaml
var houstonStoresYAML []byte

// StoreRepository loads the store location table. It is read once at startup.
type StoreRepository interface {
	All(ctx context.Context) ([]models.StoreLocation, error)
}

// YAMLStoreRepository reads store locations from a YAML document of the form
// `stores: [{id, name, chain, address, lat, lon}, ...]`
type YAMLStoreRepository struct {
	source string
	read   func() ([]byte, error)
}

var _ StoreRepository = (*YAMLStoreRepository)(nil)

// NewEmbeddedStoreRepository serves the built-in Houston store table
func NewEmbeddedStoreRepository() *YAMLStoreRepository {
	return &YAMLStoreRepository{
		source: "embedded",
		read:   func() ([]byte, error) { return houstonStoresYAML, nil },
	}
}

// NewFileStoreRepository reads the store table from a YAML file on each All call
func NewFileStoreRepository(path string) *YAMLStoreRepository {
	return &YAMLStoreRepository{
		source: path,
		read:   func() ([]byte, error) { return os.ReadFile(path) },
	}
}

type storeDocument struct {
	Stores []models.StoreLocation `yaml:"stores"`
}

// All parses and validates the store table
func (r *YAMLStoreRepository) All(ctx context.Context) ([]models.StoreLocation, error) {
	raw, err := r.read()
	if err != nil {
		return nil, fmt.Errorf("read stores %s: %w", r.source, err)
	}

	stores, err := ParseStores(raw)
	if err != nil {
		return nil, fmt.Errorf("stores %s: %w", r.source, err)
	}
	return stores, nil
}

// ParseStores decodes a YAML store table and validates it
func ParseStores(raw []byte) ([]models.StoreLocation, error) {
	var doc storeDocument
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := ValidateStores(doc.Stores); err != nil {
		return nil, err
	}
	return doc.Stores, nil
}

// ValidateStores requires unique non-empty IDs, a chain and in-range coordinates
func ValidateStores(stores []models.StoreLocation) error {
	seen := make(map[string]struct{}, len(stores))
	for i, s := range stores {
		if s.ID == "" {
			return fmt.Errorf("store %d: id is required", i)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("store %s: duplicate id", s.ID)
		}
		seen[s.ID] = struct{}{}

		if s.Chain == "" {
			return fmt.Errorf("store %s: chain is required", s.ID)
		}
		if err := geo.ValidateCoordinates(s.Lat, s.Lon); err != nil {
			return fmt.Errorf("store %s: %w", s.ID, err)
		}
	}
	return nil
}
