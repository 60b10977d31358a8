package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

// DefaultLimit applies when a query does not set a positive limit
const DefaultLimit = 50

var (
	ErrInvalidQuery = errors.New("invalid query")
)

// OrderBy names the product field a catalog query is sorted on
type OrderBy string

const (
	OrderByProteinPerDollar OrderBy = "protein_per_dollar"
	OrderByProteinPer100Cal OrderBy = "protein_per_100cal"
	OrderByProtein          OrderBy = "protein"
	OrderByPrice            OrderBy = "price"
)

// ParseOrderBy validates a sort key. An empty string selects protein_per_dollar.
func ParseOrderBy(s string) (OrderBy, error) {
	switch o := OrderBy(s); o {
	case "":
		return OrderByProteinPerDollar, nil
	case OrderByProteinPerDollar, OrderByProteinPer100Cal, OrderByProtein, OrderByPrice:
		return o, nil
	default:
		return "", fmt.Errorf("%w: unsupported order_by %q", ErrInvalidQuery, s)
	}
}

// Ascending reports whether the key sorts low to high. Only price does:
// efficiency metrics are higher-is-better, price is lower-is-better.
func (o OrderBy) Ascending() bool {
	return o == OrderByPrice
}

func (o OrderBy) value(p *models.Product) float64 {
	switch o {
	case OrderByProteinPer100Cal:
		return p.ProteinPer100Cal
	case OrderByProtein:
		return p.Protein
	case OrderByPrice:
		return p.Price
	default:
		return p.ProteinPerDollar
	}
}

// Query is a single catalog listing request
type Query struct {
	Category   models.Category
	StoreID    string
	MinProtein float64
	OrderBy    OrderBy
	Limit      int
	// Search matches product names case-insensitively
	Search string
}

// Result is a ranked, truncated product list. Count is len(Items).
type Result struct {
	Items []models.Product `json:"products"`
	Count int              `json:"count"`
}

// Validate checks q and returns it with the default sort key filled in
func Validate(q Query) (Query, error) {
	orderBy, err := ParseOrderBy(string(q.OrderBy))
	if err != nil {
		return Query{}, err
	}
	if math.IsNaN(q.MinProtein) {
		return Query{}, fmt.Errorf("%w: min_protein is not a number", ErrInvalidQuery)
	}
	q.OrderBy = orderBy
	return q, nil
}

// Rank filters products by q, sorts the whole filtered set by q.OrderBy and
// truncates it to q.Limit. The input slice is not modified.
func Rank(products []models.Product, q Query) (Result, error) {
	q, err := Validate(q)
	if err != nil {
		return Result{}, err
	}
	orderBy := q.OrderBy

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	search := strings.ToLower(strings.TrimSpace(q.Search))

	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !q.matches(&p, search) {
			continue
		}
		matched = append(matched, p)
	}

	slices.SortStableFunc(matched, func(a, b models.Product) int {
		c := cmp.Compare(orderBy.value(&a), orderBy.value(&b))
		if orderBy.Ascending() {
			return c
		}
		return -c
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return Result{Items: matched, Count: len(matched)}, nil
}

func (q Query) matches(p *models.Product, search string) bool {
	if !(p.Protein > q.MinProtein) || !(p.Price > 0) {
		return false
	}
	if q.Category != "" && q.Category != models.CategoryAll && p.Category != q.Category {
		return false
	}
	if q.StoreID != "" && p.StoreID != q.StoreID {
		return false
	}
	if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
		return false
	}
	return true
}

// Categories returns the distinct categories of products carrying protein, sorted
func Categories(products []models.Product) []models.Category {
	seen := make(map[models.Category]struct{})
	out := make([]models.Category, 0)
	for _, p := range products {
		if p.Protein <= 0 || p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	slices.Sort(out)
	return out
}
