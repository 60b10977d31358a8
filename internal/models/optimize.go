package models

import (
	"fmt"
	"strings"
)

// Diet is a single dietary restriction understood by the basket optimizer
type Diet string

const (
	DietVegan       Diet = "Vegan"
	DietVegetarian  Diet = "Vegetarian"
	DietPescatarian Diet = "Pescatarian"
	DietKeto        Diet = "Keto"
)

// Allergy is an allergen group the basket optimizer excludes by product tag
type Allergy string

const (
	AllergyDairy  Allergy = "Dairy"
	AllergyEggs   Allergy = "Eggs"
	AllergyGluten Allergy = "Gluten"
	AllergyNuts   Allergy = "Nuts"
	AllergySoy    Allergy = "Soy"
	AllergyFish   Allergy = "Fish"
)

var (
	knownDiets     = []Diet{DietVegan, DietVegetarian, DietPescatarian, DietKeto}
	knownAllergies = []Allergy{AllergyDairy, AllergyEggs, AllergyGluten, AllergyNuts, AllergySoy, AllergyFish}
)

// ParseDiet matches a diet name case-insensitively
func ParseDiet(s string) (Diet, error) {
	for _, d := range knownDiets {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown diet %q", s)
}

// ParseAllergy matches an allergy name case-insensitively
func ParseAllergy(s string) (Allergy, error) {
	for _, a := range knownAllergies {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown allergy %q", s)
}

// AllergySet is a deduplicated set of allergies
type AllergySet map[Allergy]struct{}

// NewAllergySet parses and deduplicates allergy names
func NewAllergySet(names []string) (AllergySet, error) {
	set := make(AllergySet, len(names))
	for _, name := range names {
		a, err := ParseAllergy(name)
		if err != nil {
			return nil, err
		}
		set[a] = struct{}{}
	}
	return set, nil
}

// List returns the set members in canonical order
func (s AllergySet) List() []Allergy {
	out := make([]Allergy, 0, len(s))
	for _, a := range knownAllergies {
		if _, ok := s[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

// OptimizeRequest is the weekly basket request forwarded to the optimizer service.
// Schema matches the optimizer's /api/optimize body.
type OptimizeRequest struct {
	Budget        float64   `json:"budget"`
	DailyCalories int       `json:"daily_calories"`
	DailyProtein  *int      `json:"daily_protein,omitempty"`
	MaxPerProduct int       `json:"max_per_product"`
	Allergies     []Allergy `json:"allergies"`
	Diet          *Diet     `json:"diet,omitempty"`
}

// BasketItem is a single product chosen by the optimizer
type BasketItem struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Quantity        int      `json:"quantity"`
	UnitPrice       float64  `json:"unit_price"`
	TotalPrice      float64  `json:"total_price"`
	ProteinPerItem  float64  `json:"protein_per_item"`
	TotalProtein    float64  `json:"total_protein"`
	CaloriesPerItem int      `json:"calories_per_item"`
	TotalCalories   int      `json:"total_calories"`
	FitnessScore    float64  `json:"fitness_score"`
	Reason          string   `json:"reason"`
	Category        Category `json:"category"`
}

// BasketSummary aggregates the chosen basket
type BasketSummary struct {
	TotalCost          float64 `json:"total_cost"`
	TotalProtein       float64 `json:"total_protein"`
	TotalCalories      int     `json:"total_calories"`
	Budget             float64 `json:"budget"`
	CalorieTarget      int     `json:"calorie_target"`
	BudgetUtilization  string  `json:"budget_utilization"`
	CalorieAchievement string  `json:"calorie_achievement"`
}

// OptimizeResult is the optimizer's response
type OptimizeResult struct {
	Success   bool          `json:"success"`
	Status    string        `json:"status"`
	Summary   BasketSummary `json:"summary"`
	Items     []BasketItem  `json:"items"`
	RequestID string        `json:"request_id,omitempty"`
}
