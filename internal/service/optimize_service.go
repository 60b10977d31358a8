package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

var (
	ErrInvalidOptimizeRequest = errors.New("invalid optimize request")
	ErrOptimizerNotConfigured = errors.New("optimizer not configured")
)

// Accepted ranges for basket optimization requests
const (
	MinBudget        = 20
	MaxBudget        = 500
	MinDailyCalories = 1200
	MaxDailyCalories = 5000
	MinDailyProtein  = 50
	MaxDailyProtein  = 400
	MinPerProduct    = 1
	MaxPerProduct    = 10

	DefaultMaxPerProduct = 3
)

// Optimizer solves a weekly basket request
type Optimizer interface {
	Optimize(ctx context.Context, req models.OptimizeRequest) (models.OptimizeResult, error)
}

// OptimizeInput is an unvalidated basket request as received from a client
type OptimizeInput struct {
	Budget        float64  `json:"budget"`
	DailyCalories int      `json:"daily_calories"`
	DailyProtein  *int     `json:"daily_protein,omitempty"`
	MaxPerProduct *int     `json:"max_per_product,omitempty"`
	Allergies     []string `json:"allergies"`
	Diet          string   `json:"diet,omitempty"`
}

// OptimizeService validates basket requests and forwards them to the optimizer
type OptimizeService struct {
	optimizer Optimizer
}

// NewOptimizeService creates a new optimize service. optimizer may be nil.
func NewOptimizeService(optimizer Optimizer) *OptimizeService {
	return &OptimizeService{
		optimizer: optimizer,
	}
}

// Optimize validates in and forwards it
func (s *OptimizeService) Optimize(ctx context.Context, in OptimizeInput) (models.OptimizeResult, error) {
	req, err := ValidateOptimizeInput(in)
	if err != nil {
		return models.OptimizeResult{}, err
	}

	if s.optimizer == nil {
		return models.OptimizeResult{}, ErrOptimizerNotConfigured
	}

	return s.optimizer.Optimize(ctx, req)
}

// ValidateOptimizeInput checks ranges and enumerations and normalizes the request
func ValidateOptimizeInput(in OptimizeInput) (models.OptimizeRequest, error) {
	var req models.OptimizeRequest

	if in.Budget < MinBudget || in.Budget > MaxBudget {
		return req, fmt.Errorf("%w: budget must be between %d and %d", ErrInvalidOptimizeRequest, MinBudget, MaxBudget)
	}
	if in.DailyCalories < MinDailyCalories || in.DailyCalories > MaxDailyCalories {
		return req, fmt.Errorf("%w: daily_calories must be between %d and %d", ErrInvalidOptimizeRequest, MinDailyCalories, MaxDailyCalories)
	}
	if in.DailyProtein != nil && (*in.DailyProtein < MinDailyProtein || *in.DailyProtein > MaxDailyProtein) {
		return req, fmt.Errorf("%w: daily_protein must be between %d and %d", ErrInvalidOptimizeRequest, MinDailyProtein, MaxDailyProtein)
	}

	maxPer := DefaultMaxPerProduct
	if in.MaxPerProduct != nil {
		maxPer = *in.MaxPerProduct
	}
	if maxPer < MinPerProduct || maxPer > MaxPerProduct {
		return req, fmt.Errorf("%w: max_per_product must be between %d and %d", ErrInvalidOptimizeRequest, MinPerProduct, MaxPerProduct)
	}

	allergies, err := models.NewAllergySet(in.Allergies)
	if err != nil {
		return req, fmt.Errorf("%w: %v", ErrInvalidOptimizeRequest, err)
	}

	req = models.OptimizeRequest{
		Budget:        in.Budget,
		DailyCalories: in.DailyCalories,
		DailyProtein:  in.DailyProtein,
		MaxPerProduct: maxPer,
		Allergies:     allergies.List(),
	}

	if in.Diet != "" {
		diet, err := models.ParseDiet(in.Diet)
		if err != nil {
			return models.OptimizeRequest{}, fmt.Errorf("%w: %v", ErrInvalidOptimizeRequest, err)
		}
		req.Diet = &diet
	}

	return req, nil
}
