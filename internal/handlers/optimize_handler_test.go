package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/cuenta/internal/models"
	"github.com/Lixing-Zhang/cuenta/internal/optimizer"
	"github.com/Lixing-Zhang/cuenta/internal/service"
	"github.com/Lixing-Zhang/cuenta/pkg/logger"
)

type stubOptimizer struct {
	result models.OptimizeResult
	err    error
}

func (s stubOptimizer) Optimize(ctx context.Context, req models.OptimizeRequest) (models.OptimizeResult, error) {
	return s.result, s.err
}

func TestOptimizeHandler_Optimize(t *testing.T) {
	okResult := models.OptimizeResult{
		Success:   true,
		Status:    "Optimal",
		RequestID: "req-1",
		Items:     []models.BasketItem{{ID: "7", Name: "Chunk Light Tuna in Water", Quantity: 3}},
	}

	tests := []struct {
		name           string
		optimizer      service.Optimizer
		requestBody    string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "successful optimization",
			optimizer:      stubOptimizer{result: okResult},
			requestBody:    `{"budget": 75, "daily_calories": 2200, "allergies": ["Dairy"], "diet": "Pescatarian"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid JSON",
			optimizer:      stubOptimizer{result: okResult},
			requestBody:    `{"budget": `,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid request body",
		},
		{
			name:           "budget out of range",
			optimizer:      stubOptimizer{result: okResult},
			requestBody:    `{"budget": 10, "daily_calories": 2200}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown diet",
			optimizer:      stubOptimizer{result: okResult},
			requestBody:    `{"budget": 75, "daily_calories": 2200, "diet": "Carnivore"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "infeasible basket",
			optimizer:      stubOptimizer{err: &optimizer.Error{StatusCode: http.StatusBadRequest, Detail: "Optimization failed: Infeasible"}},
			requestBody:    `{"budget": 20, "daily_calories": 5000}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Optimization failed: Infeasible",
		},
		{
			name:           "optimizer server error",
			optimizer:      stubOptimizer{err: &optimizer.Error{StatusCode: http.StatusInternalServerError, Detail: "boom"}},
			requestBody:    `{"budget": 75, "daily_calories": 2200}`,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "optimizer unreachable",
			optimizer:      stubOptimizer{err: errors.New("dial tcp: connection refused")},
			requestBody:    `{"budget": 75, "daily_calories": 2200}`,
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "optimizer not configured",
			optimizer:      nil,
			requestBody:    `{"budget": 75, "daily_calories": 2200}`,
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewOptimizeHandler(service.NewOptimizeService(tt.optimizer), logger.New("error"))

			req := httptest.NewRequest(http.MethodPost, "/api/optimize", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.Optimize(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			if tt.expectedStatus == http.StatusOK {
				var result models.OptimizeResult
				if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if !result.Success || len(result.Items) != 1 || result.RequestID != "req-1" {
					t.Errorf("unexpected result %+v", result)
				}
				return
			}

			var resp map[string]string
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected an error message")
			}
			if tt.expectedError != "" && resp["error"] != tt.expectedError {
				t.Errorf("expected error %q, got %q", tt.expectedError, resp["error"])
			}
		})
	}
}
