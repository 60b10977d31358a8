package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Lixing-Zhang/cuenta/internal/models"
)

type fakeOptimizer struct {
	got    models.OptimizeRequest
	calls  int
	result models.OptimizeResult
	err    error
}

func (f *fakeOptimizer) Optimize(ctx context.Context, req models.OptimizeRequest) (models.OptimizeResult, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func intPtr(v int) *int {
	return &v
}

func validInput() OptimizeInput {
	return OptimizeInput{Budget: 75, DailyCalories: 2200}
}

func TestValidateOptimizeInput(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(in *OptimizeInput)
		wantErr bool
	}{
		{"valid minimal", func(in *OptimizeInput) {}, false},
		{"budget lower bound", func(in *OptimizeInput) { in.Budget = 20 }, false},
		{"budget too low", func(in *OptimizeInput) { in.Budget = 19.99 }, true},
		{"budget too high", func(in *OptimizeInput) { in.Budget = 500.01 }, true},
		{"calories too low", func(in *OptimizeInput) { in.DailyCalories = 1199 }, true},
		{"calories upper bound", func(in *OptimizeInput) { in.DailyCalories = 5000 }, false},
		{"protein too low", func(in *OptimizeInput) { in.DailyProtein = intPtr(49) }, true},
		{"protein too high", func(in *OptimizeInput) { in.DailyProtein = intPtr(401) }, true},
		{"protein in range", func(in *OptimizeInput) { in.DailyProtein = intPtr(150) }, false},
		{"max per product zero", func(in *OptimizeInput) { in.MaxPerProduct = intPtr(0) }, true},
		{"max per product eleven", func(in *OptimizeInput) { in.MaxPerProduct = intPtr(11) }, true},
		{"unknown diet", func(in *OptimizeInput) { in.Diet = "Paleo" }, true},
		{"unknown allergy", func(in *OptimizeInput) { in.Allergies = []string{"Dairy", "Shellfish"} }, true},
		{"known diet any case", func(in *OptimizeInput) { in.Diet = "vegan" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			_, err := ValidateOptimizeInput(in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidOptimizeRequest) {
					t.Errorf("expected ErrInvalidOptimizeRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error = %v", err)
			}
		})
	}
}

func TestValidateOptimizeInput_Normalizes(t *testing.T) {
	in := validInput()
	in.Diet = "keto"
	in.Allergies = []string{"soy", "Dairy", "dairy"}

	req, err := ValidateOptimizeInput(in)
	if err != nil {
		t.Fatalf("unexpected error = %v", err)
	}

	if req.MaxPerProduct != DefaultMaxPerProduct {
		t.Errorf("expected default max_per_product %d, got %d", DefaultMaxPerProduct, req.MaxPerProduct)
	}
	if req.Diet == nil || *req.Diet != models.DietKeto {
		t.Errorf("expected diet Keto, got %v", req.Diet)
	}
	if len(req.Allergies) != 2 || req.Allergies[0] != models.AllergyDairy || req.Allergies[1] != models.AllergySoy {
		t.Errorf("expected [Dairy Soy], got %v", req.Allergies)
	}
	if req.DailyProtein != nil {
		t.Errorf("expected daily_protein to stay unset, got %d", *req.DailyProtein)
	}
}

func TestOptimizeService_Optimize(t *testing.T) {
	t.Run("forwards validated request", func(t *testing.T) {
		opt := &fakeOptimizer{result: models.OptimizeResult{Success: true, Status: "Optimal"}}
		svc := NewOptimizeService(opt)

		in := validInput()
		in.MaxPerProduct = intPtr(5)

		result, err := svc.Optimize(context.Background(), in)
		if err != nil {
			t.Fatalf("Optimize() unexpected error = %v", err)
		}
		if !result.Success || result.Status != "Optimal" {
			t.Errorf("unexpected result %+v", result)
		}
		if opt.got.MaxPerProduct != 5 || opt.got.Budget != 75 {
			t.Errorf("unexpected forwarded request %+v", opt.got)
		}
	})

	t.Run("invalid input is not forwarded", func(t *testing.T) {
		opt := &fakeOptimizer{}
		_, err := NewOptimizeService(opt).Optimize(context.Background(), OptimizeInput{Budget: 5})
		if !errors.Is(err, ErrInvalidOptimizeRequest) {
			t.Errorf("expected ErrInvalidOptimizeRequest, got %v", err)
		}
		if opt.calls != 0 {
			t.Errorf("expected no optimizer calls, got %d", opt.calls)
		}
	})

	t.Run("optimizer error propagates", func(t *testing.T) {
		upstream := errors.New("infeasible")
		_, err := NewOptimizeService(&fakeOptimizer{err: upstream}).Optimize(context.Background(), validInput())
		if !errors.Is(err, upstream) {
			t.Errorf("expected upstream error, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewOptimizeService(nil).Optimize(context.Background(), validInput())
		if !errors.Is(err, ErrOptimizerNotConfigured) {
			t.Errorf("expected ErrOptimizerNotConfigured, got %v", err)
		}
	})
}
