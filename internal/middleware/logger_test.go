package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Lixing-Zhang/cuenta/pkg/logger"
)

func TestLogger(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedLevel string
	}{
		{"success", http.StatusOK, "INFO"},
		{"not found", http.StatusNotFound, "INFO"},
		{"server error", http.StatusBadGateway, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "debug")

			handler := chimiddleware.RequestID(Logger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/stores/nearby?lat=29.76&lon=-95.37", nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("failed to decode log entry %q: %v", buf.String(), err)
			}

			if entry["level"] != tt.expectedLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.expectedLevel)
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if entry["path"] != "/api/stores/nearby" || entry["query"] != "lat=29.76&lon=-95.37" {
				t.Errorf("unexpected path/query %v %v", entry["path"], entry["query"])
			}
			if id, _ := entry["request_id"].(string); id == "" {
				t.Error("expected request_id to be logged")
			}
		})
	}
}
