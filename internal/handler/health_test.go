package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockHealthChecker is a mock implementation of HealthChecker for testing.
type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) Ping(ctx context.Context) error {
	return m.err
}

func TestHealthHandler_Healthz(t *testing.T) {
	t.Parallel()

	h := NewHealthHandler(&mockHealthChecker{err: errors.New("down")}, nil, discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	h.Healthz(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var response HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Status != "ok" {
		t.Errorf("expected status 'ok', got %s", response.Status)
	}
	if len(response.Checks) != 0 {
		t.Errorf("liveness must not check dependencies, got %v", response.Checks)
	}
}

func TestHealthHandler_Readyz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		db         HealthChecker
		cache      HealthChecker
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "all healthy",
			db:         &mockHealthChecker{},
			cache:      &mockHealthChecker{},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:       "postgres down",
			db:         &mockHealthChecker{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")},
			cache:      &mockHealthChecker{},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"postgres": "unavailable", "redis": "ok"},
		},
		{
			name:       "redis down",
			db:         &mockHealthChecker{},
			cache:      &mockHealthChecker{err: errors.New("i/o timeout")},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"postgres": "ok", "redis": "unavailable"},
		},
		{
			name:       "not configured",
			wantCode:   http.StatusOK,
			wantStatus: "ok",
			wantChecks: map[string]string{"postgres": "not configured", "redis": "not configured"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthHandler(tt.db, tt.cache, discardLogger())

			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			rec := httptest.NewRecorder()

			h.Readyz(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if strings.Contains(rec.Body.String(), "10.0.0.5") {
				t.Error("dependency errors must not be exposed")
			}

			var response HealthResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response.Status != tt.wantStatus {
				t.Errorf("expected status %q, got %q", tt.wantStatus, response.Status)
			}
			for name, want := range tt.wantChecks {
				if got := response.Checks[name]; got != want {
					t.Errorf("check %s: expected %q, got %q", name, want, got)
				}
			}
		})
	}
}
