package catalog

import "github.com/Lixing-Zhang/cuenta/internal/models"

// ProteinPerDollar returns grams of protein per currency unit, or 0 for a zero price
func ProteinPerDollar(protein, price float64) float64 {
	return efficiency(protein, price, 1)
}

// ProteinPer100Cal returns grams of protein per 100 calories, or 0 for zero calories
func ProteinPer100Cal(protein float64, calories int) float64 {
	return efficiency(protein, float64(calories), 100)
}

func efficiency(protein, denominator, scale float64) float64 {
	if denominator == 0 {
		return 0
	}
	return protein / denominator * scale
}

// WithEfficiency returns p with any missing derived metric computed from its
// protein, price and calories. Metrics already present are kept as given.
func WithEfficiency(p models.Product) models.Product {
	if p.ProteinPerDollar == 0 {
		p.ProteinPerDollar = ProteinPerDollar(p.Protein, p.Price)
	}
	if p.ProteinPer100Cal == 0 {
		p.ProteinPer100Cal = ProteinPer100Cal(p.Protein, p.Calories)
	}
	return p
}
