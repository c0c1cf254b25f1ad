package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/pawhome/pawhome/internal/cache"
	"github.com/pawhome/pawhome/internal/metrics"
)

type fakeLimiter struct {
	mu      sync.Mutex
	allowed int
	calls   map[string]int
	err     error
}

func (f *fakeLimiter) CheckIPRateLimit(_ context.Context, scope, ip string, _, _ int) (*cache.RateLimitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[scope+"|"+ip]++
	if f.err != nil {
		return &cache.RateLimitResult{Allowed: true}, f.err
	}
	if f.calls[scope+"|"+ip] > f.allowed {
		return &cache.RateLimitResult{Allowed: false, RetryAfter: 1500 * time.Millisecond}, nil
	}
	return &cache.RateLimitResult{Allowed: true}, nil
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{allowed: 2}
	rec := metrics.NewInMemory()
	handler := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: limiter,
		Metrics: rec,
		Enabled: true,
		Scope:   "token",
		RPS:     1,
		Burst:   2,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/token", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests && w.Header().Get("Retry-After") != "1" {
			t.Errorf("Retry-After = %q, want 1", w.Header().Get("Retry-After"))
		}
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
	if limiter.calls["token|203.0.113.7"] != 3 {
		t.Errorf("expected bucket keyed by host without port, got %v", limiter.calls)
	}
	if rec.Snapshot().RateLimited["token"] != 1 {
		t.Error("expected one rate limited metric")
	}
}

func TestRateLimitIP_FailsOpen(t *testing.T) {
	t.Parallel()

	handler := RateLimitIP(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: &fakeLimiter{err: errors.New("redis down")},
		Enabled: true,
		Scope:   "token",
		RPS:     1,
		Burst:   1,
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the limiter fails", w.Code)
	}
}

func TestRateLimitIP_Disabled(t *testing.T) {
	t.Parallel()

	limiter := &fakeLimiter{}
	handler := RateLimitIP(RateLimitConfig{Logger: discardLogger(), Limiter: limiter})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	if w.Code != http.StatusOK || len(limiter.calls) != 0 {
		t.Errorf("disabled limiter must not be consulted")
	}
}
