package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counts(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncTokenIssued("access")
	m.IncTokenIssued("access")
	m.IncTokenIssued("refresh")
	m.IncAuthFailure("password_changed")
	m.IncTokenBlacklisted()
	m.IncRegistration("shelter", "created")
	m.IncAdoptionRequest("published")
	m.ObserveHTTPRequest("/api/v1/pets", 200, 3*time.Millisecond)

	snap := m.Snapshot()
	if snap.TokensIssued["access"] != 2 || snap.TokensIssued["refresh"] != 1 {
		t.Errorf("unexpected token counts: %v", snap.TokensIssued)
	}
	if snap.AuthFailures["password_changed"] != 1 {
		t.Errorf("unexpected auth failures: %v", snap.AuthFailures)
	}
	if snap.TokensBlacklisted != 1 {
		t.Errorf("expected 1 blacklisted, got %d", snap.TokensBlacklisted)
	}
	if snap.Registrations["shelter/created"] != 1 {
		t.Errorf("unexpected registrations: %v", snap.Registrations)
	}
	if snap.HTTPRequests["/api/v1/pets/200"] != 1 {
		t.Errorf("unexpected http counts: %v", snap.HTTPRequests)
	}

	// Snapshot maps are copies.
	snap.TokensIssued["access"] = 99
	if m.Snapshot().TokensIssued["access"] != 2 {
		t.Error("snapshot must not alias recorder state")
	}
}

func TestPrometheusRecorder_Exposition(t *testing.T) {
	t.Parallel()

	p := NewPrometheus()
	p.IncTokenIssued("access")
	p.IncAuthFailure("user_inactive")
	p.ObserveHTTPRequest("/api/v1/auth/token", 401, time.Millisecond)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`pawhome_tokens_issued_total{token_type="access"} 1`,
		`pawhome_auth_failures_total{code="user_inactive"} 1`,
		`pawhome_http_requests_total{route="/api/v1/auth/token",status="401"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}
