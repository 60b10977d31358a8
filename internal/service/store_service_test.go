package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/cuenta/internal/geo"
	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/repository"
)

type fakeGeocoder struct {
	zip   string
	ok    bool
	calls int
}

func (g *fakeGeocoder) ZipFromCoordinates(ctx context.Context, lat, lon float64) (string, bool) {
	g.calls++
	return g.zip, g.ok
}

func testStores() []models.StoreLocation {
	return []models.StoreLocation{
		{ID: "a", Name: "A", Chain: "Kroger", Lat: 29.80, Lon: -95.40},
		{ID: "b", Name: "B", Chain: "HEB", Lat: 29.76, Lon: -95.37},
		{ID: "c", Name: "C", Chain: "Aldi", Lat: 29.70, Lon: -95.36},
		{ID: "d", Name: "D", Chain: "HEB", Lat: 29.90, Lon: -95.50},
	}
}

func TestStoreService_Nearby(t *testing.T) {
	svc := NewStoreService(testStores(), nil)

	nearby, err := svc.Nearby(29.7604, -95.3698, 2, "")
	if err != nil {
		t.Fatalf("Nearby() unexpected error = %v", err)
	}
	if len(nearby) != 2 || nearby[0].ID != "b" {
		t.Errorf("unexpected nearby stores: %+v", nearby)
	}

	heb, err := svc.Nearby(29.7604, -95.3698, 0, "heb")
	if err != nil {
		t.Fatalf("Nearby() unexpected error = %v", err)
	}
	if len(heb) != 2 || heb[0].ID != "b" || heb[1].ID != "d" {
		t.Errorf("unexpected HEB stores: %+v", heb)
	}
}

func TestStoreService_NearbyInvalidCoordinates(t *testing.T) {
	svc := NewStoreService(testStores(), nil)

	tests := []struct {
		name     string
		lat, lon float64
	}{
		{"latitude too high", 91, 0},
		{"longitude too low", 0, -181},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Nearby(tt.lat, tt.lon, 5, ""); !errors.Is(err, geo.ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestStoreService_TableIsCopied(t *testing.T) {
	stores := testStores()
	svc := NewStoreService(stores, nil)

	stores[0].Chain = "Mutated"

	if svc.CountByChain()["Kroger"] != 1 {
		t.Error("expected store table to be isolated from caller mutation")
	}
	if got := svc.Chains(); len(got) != 3 || got[0] != "Aldi" {
		t.Errorf("unexpected chains %v", got)
	}
	if got := svc.Stores("HEB"); len(got) != 2 {
		t.Errorf("expected 2 HEB stores, got %d", len(got))
	}
	if svc.Len() != 4 {
		t.Errorf("expected 4 stores, got %d", svc.Len())
	}
}

func TestStoreService_ZipCode(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		g := &fakeGeocoder{zip: "77002", ok: true}
		zip, ok, err := NewStoreService(nil, g).ZipCode(context.Background(), 29.7604, -95.3698)
		if err != nil || !ok || zip != "77002" {
			t.Errorf("ZipCode() = (%q, %v, %v)", zip, ok, err)
		}
	})

	t.Run("geocoder miss", func(t *testing.T) {
		zip, ok, err := NewStoreService(nil, &fakeGeocoder{}).ZipCode(context.Background(), 29.7604, -95.3698)
		if err != nil || ok || zip != "" {
			t.Errorf("ZipCode() = (%q, %v, %v)", zip, ok, err)
		}
	})

	t.Run("no geocoder", func(t *testing.T) {
		_, ok, err := NewStoreService(nil, nil).ZipCode(context.Background(), 29.7604, -95.3698)
		if err != nil || ok {
			t.Errorf("expected a miss without error, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("invalid coordinates skip geocoder", func(t *testing.T) {
		g := &fakeGeocoder{zip: "77002", ok: true}
		_, _, err := NewStoreService(nil, g).ZipCode(context.Background(), 100, 0)
		if !errors.Is(err, geo.ErrInvalidCoordinates) {
			t.Errorf("expected ErrInvalidCoordinates, got %v", err)
		}
		if g.calls != 0 {
			t.Errorf("expected geocoder not to be called, got %d calls", g.calls)
		}
	})
}

func TestLoadStoreService(t *testing.T) {
	svc, err := LoadStoreService(context.Background(), repository.NewEmbeddedStoreRepository(), nil)
	if err != nil {
		t.Fatalf("LoadStoreService() unexpected error = %v", err)
	}

	nearby, err := svc.Nearby(29.7604, -95.3698, 5, "")
	if err != nil {
		t.Fatalf("Nearby() unexpected error = %v", err)
	}
	if len(nearby) != 5 {
		t.Errorf("expected 5 stores, got %d", len(nearby))
	}

	if _, err := LoadStoreService(context.Background(), repository.NewFileStoreRepository("/non/existent.yaml"), nil); err == nil {
		t.Error("expected error for missing store file")
	}
}
