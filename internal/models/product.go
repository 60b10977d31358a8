package models

import "fmt"

// Category is a product grouping used by the catalog filters.
// Values are case-sensitive.
type Category string

const (
	CategoryAll     Category = "all"
	CategoryMeat    Category = "meat"
	CategorySeafood Category = "seafood"
	CategoryDairy   Category = "dairy"
	CategoryEggs    Category = "eggs"
	CategoryProtein Category = "protein"
	CategoryPlant   Category = "plant"
	CategoryOther   Category = "other"
)

// Categories returns the concrete product categories, excluding the "all" wildcard
func Categories() []Category {
	return []Category{
		CategoryMeat,
		CategorySeafood,
		CategoryDairy,
		CategoryEggs,
		CategoryProtein,
		CategoryPlant,
		CategoryOther,
	}
}

// ParseCategory validates a category name. The "all" wildcard is accepted.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if c == CategoryAll {
		return c, nil
	}
	for _, known := range Categories() {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Product is a grocery item with its nutrition facts and efficiency metrics.
// ProteinPerDollar and ProteinPer100Cal are precomputed upstream; a zero value
// means the metric was not supplied.
type Product struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Brand                string   `json:"brand,omitempty"`
	Category             Category `json:"category"`
	Price                float64  `json:"price"`
	Calories             int      `json:"calories"`
	Protein              float64  `json:"protein"`
	ProteinPerDollar     float64  `json:"protein_per_dollar"`
	ProteinPer100Cal     float64  `json:"protein_per_100cal"`
	StoreID              string   `json:"store_id,omitempty"`
	ServingSize          string   `json:"serving_size,omitempty"`
	ServingsPerContainer float64  `json:"servings_per_container,omitempty"`
	ImageURL             string   `json:"image_url,omitempty"`
}
