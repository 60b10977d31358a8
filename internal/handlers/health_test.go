package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/cuenta/pkg/logger"
)

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(logger.New("error"), func() map[string]int {
		return map[string]int{"products": 20, "stores": 60}
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" || resp.Version != Version {
		t.Errorf("unexpected health response %+v", resp)
	}
	if resp.Data["stores"] != 60 || resp.Data["products"] != 20 {
		t.Errorf("unexpected data %v", resp.Data)
	}
	if resp.Timestamp.IsZero() {
		t.Error("expected a timestamp")
	}
}
