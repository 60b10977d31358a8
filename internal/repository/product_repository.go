package repository

import (
	"context"
	"errors"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/Lixing-Zhang/cuenta/internal/catalog"
	"github.com/Lixing-Zhang/cuenta/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access.
// Find may narrow the candidate set using q but does not sort or truncate;
// callers rank the result with catalog.Rank.
type ProductRepository interface {
	Find(ctx context.Context, q catalog.Query) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// InMemoryProductRepository implements ProductRepository over a fixed product slice
type InMemoryProductRepository struct {
	products []models.Product
	byID     map[string]int
	stores   *bloom.BloomFilter
}

var _ ProductRepository = (*InMemoryProductRepository)(nil)

// NewInMemoryProductRepository creates a repository holding products in the given order.
// Missing efficiency metrics are filled in; a later duplicate ID replaces an earlier one.
func NewInMemoryProductRepository(products []models.Product) *InMemoryProductRepository {
	r := &InMemoryProductRepository{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
		stores:   bloom.NewWithEstimates(uint(max(len(products), 1)), 0.01),
	}

	for _, p := range products {
		p = catalog.WithEfficiency(p)
		if i, exists := r.byID[p.ID]; exists {
			r.products[i] = p
		} else {
			r.byID[p.ID] = len(r.products)
			r.products = append(r.products, p)
		}
		if p.StoreID != "" {
			r.stores.AddString(p.StoreID)
		}
	}

	return r
}

// NewSeededProductRepository creates an in-memory repository with the built-in sample catalog
func NewSeededProductRepository() *InMemoryProductRepository {
	return NewInMemoryProductRepository(SeedProducts())
}

// Find returns all products. When q names a store the bloom filter has never
// seen it returns none early; this only skips work catalog.Rank would do.
func (r *InMemoryProductRepository) Find(ctx context.Context, q catalog.Query) ([]models.Product, error) {
	if q.StoreID != "" && !r.stores.TestString(q.StoreID) {
		return []models.Product{}, nil
	}

	products := make([]models.Product, len(r.products))
	copy(products, r.products)
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	i, exists := r.byID[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	product := r.products[i]
	return &product, nil
}

// Len returns the number of distinct products held
func (r *InMemoryProductRepository) Len() int {
	return len(r.products)
}

// SeedProducts returns the sample catalog used when no product source is configured
func SeedProducts() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Kirkwood Chicken Breast (3 lb)", Brand: "Kirkwood", Category: models.CategoryMeat, Price: 8.99, Calories: 120, Protein: 26, StoreID: "aldi-ost", ServingSize: "4 oz", ServingsPerContainer: 12},
		{ID: "2", Name: "Kirkwood Chicken Thighs (3 lb)", Brand: "Kirkwood", Category: models.CategoryMeat, Price: 5.99, Calories: 180, Protein: 22, StoreID: "aldi-ost", ServingSize: "4 oz", ServingsPerContainer: 12},
		{ID: "3", Name: "Never Any! Ground Turkey 93/7", Brand: "Never Any!", Category: models.CategoryMeat, Price: 5.49, Calories: 170, Protein: 21, StoreID: "aldi-ost", ServingSize: "4 oz", ServingsPerContainer: 4},
		{ID: "4", Name: "Ground Beef 93/7", Brand: "Kroger", Category: models.CategoryMeat, Price: 6.99, Calories: 170, Protein: 22, StoreID: "kroger-heights", ServingSize: "4 oz", ServingsPerContainer: 4},
		{ID: "5", Name: "Tilapia Fillets (2 lb)", Brand: "Fremont Fish Market", Category: models.CategorySeafood, Price: 7.99, Calories: 110, Protein: 23, StoreID: "aldi-ost", ServingSize: "4 oz", ServingsPerContainer: 8},
		{ID: "6", Name: "Atlantic Salmon Fillet", Brand: "H-E-B", Category: models.CategorySeafood, Price: 8.99, Calories: 180, Protein: 25, StoreID: "heb-montrose-market", ServingSize: "4 oz", ServingsPerContainer: 4},
		{ID: "7", Name: "Chunk Light Tuna in Water", Brand: "StarKist", Category: models.CategorySeafood, Price: 1.19, Calories: 70, Protein: 17, StoreID: "kroger-heights", ServingSize: "1 can", ServingsPerContainer: 1},
		{ID: "8", Name: "Large Eggs (18 ct)", Brand: "Goldhen", Category: models.CategoryEggs, Price: 3.29, Calories: 70, Protein: 6, StoreID: "aldi-ost", ServingSize: "1 egg", ServingsPerContainer: 18},
		{ID: "9", Name: "Cage Free Large Eggs (12 ct)", Brand: "H-E-B", Category: models.CategoryEggs, Price: 2.89, Calories: 70, Protein: 6, StoreID: "heb-montrose-market", ServingSize: "1 egg", ServingsPerContainer: 12},
		{ID: "10", Name: "Plain Nonfat Greek Yogurt (32 oz)", Brand: "Friendly Farms", Category: models.CategoryDairy, Price: 4.49, Calories: 100, Protein: 17, StoreID: "aldi-ost", ServingSize: "3/4 cup", ServingsPerContainer: 4},
		{ID: "11", Name: "Low Fat Cottage Cheese (24 oz)", Brand: "Friendly Farms", Category: models.CategoryDairy, Price: 2.99, Calories: 110, Protein: 13, StoreID: "aldi-ost", ServingSize: "1/2 cup", ServingsPerContainer: 6},
		{ID: "12", Name: "Fat Free Milk (1 gal)", Brand: "Kroger", Category: models.CategoryDairy, Price: 3.49, Calories: 90, Protein: 8, StoreID: "kroger-heights", ServingSize: "1 cup", ServingsPerContainer: 16},
		{ID: "13", Name: "Whey Protein Powder (2 lb)", Brand: "Elevation", Category: models.CategoryProtein, Price: 19.99, Calories: 120, Protein: 24, StoreID: "aldi-ost", ServingSize: "1 scoop", ServingsPerContainer: 28},
		{ID: "14", Name: "Protein Bars (5 ct)", Brand: "Elevation", Category: models.CategoryProtein, Price: 5.99, Calories: 200, Protein: 20, StoreID: "aldi-ost", ServingSize: "1 bar", ServingsPerContainer: 5},
		{ID: "15", Name: "Organic Firm Tofu (14 oz)", Brand: "Simply Nature", Category: models.CategoryPlant, Price: 2.29, Calories: 90, Protein: 10, StoreID: "aldi-ost", ServingSize: "3 oz", ServingsPerContainer: 4.5},
		{ID: "16", Name: "Dry Lentils (16 oz)", Brand: "Simply Nature", Category: models.CategoryPlant, Price: 2.49, Calories: 170, Protein: 12, StoreID: "aldi-ost", ServingSize: "1/4 cup", ServingsPerContainer: 13},
		{ID: "17", Name: "Black Beans (15 oz)", Brand: "Dakota's Pride", Category: models.CategoryPlant, Price: 0.79, Calories: 110, Protein: 7, StoreID: "aldi-ost", ServingSize: "1/2 cup", ServingsPerContainer: 3.5},
		{ID: "18", Name: "Creamy Peanut Butter (28 oz)", Brand: "Southern Grove", Category: models.CategoryOther, Price: 3.49, Calories: 190, Protein: 7, StoreID: "aldi-ost", ServingSize: "2 tbsp", ServingsPerContainer: 26},
		{ID: "19", Name: "Old Fashioned Oats (42 oz)", Brand: "Millville", Category: models.CategoryOther, Price: 2.99, Calories: 150, Protein: 5, StoreID: "aldi-ost", ServingSize: "1/2 cup", ServingsPerContainer: 30},
		{ID: "20", Name: "Almond Milk (64 oz)", Brand: "SimplyNature", Category: models.CategoryOther, Price: 2.79, Calories: 30, Protein: 1, StoreID: "heb-montrose-market", ServingSize: "1 cup", ServingsPerContainer: 8},
	}
}
