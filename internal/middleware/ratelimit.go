package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pawhome/pawhome/internal/cache"
	"github.com/pawhome/pawhome/internal/metrics"
)

// RateLimiter consumes from a per-IP token bucket.
type RateLimiter interface {
	CheckIPRateLimit(ctx context.Context, scope, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter RateLimiter
	Metrics metrics.Recorder
	Enabled bool
	// Scope separates buckets of different endpoints.
	Scope string
	RPS   int
	Burst int
}

// RateLimitIP returns middleware that rate limits requests per client IP.
// Limiter failures let the request through.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), cfg.Scope, ip, cfg.RPS, cfg.Burst)
			if err != nil {
				cfg.Logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("scope", cfg.Scope),
				)
			}
			if result == nil || result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := int(result.RetryAfter / time.Second)
			if retryAfter < 1 {
				retryAfter = 1
			}
			cfg.Logger.Warn("rate limit exceeded",
				slog.String("scope", cfg.Scope),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Int("retry_after_seconds", retryAfter),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			recorder.IncRateLimited(cfg.Scope)

			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			WriteError(w, http.StatusTooManyRequests, ErrorResponse{
				Code:   CodeThrottled,
				Detail: fmt.Sprintf("Request was throttled. Expected available in %d seconds.", retryAfter),
			})
		})
	}
}

// clientIP returns the host part of RemoteAddr. Proxy headers are resolved
// earlier by chi's RealIP middleware.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
