package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pawhome"

var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	tokensIssued      *prometheus.CounterVec
	authFailures      *prometheus.CounterVec
	tokensBlacklisted prometheus.Counter
	rateLimited       *prometheus.CounterVec
	registrations     *prometheus.CounterVec
	adoptionRequests  *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewPrometheus registers all collectors, including the Go runtime and
// process collectors, on a fresh registry.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,

		// Labels:
		//   - token_type: "access" or "refresh"
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Total number of signed tokens, by token type.",
		}, []string{"token_type"}),

		// Labels:
		//   - code: failure code returned to the client (e.g. "password_changed")
		authFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected authentication attempts, by code.",
		}, []string{"code"}),

		tokensBlacklisted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_blacklisted_total",
			Help:      "Total number of tokens added to the blacklist.",
		}),

		rateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter, by scope.",
		}, []string{"scope"}),

		registrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Total number of registration attempts, by role and outcome.",
		}, []string{"role", "outcome"}),

		adoptionRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adoption_requests_total",
			Help:      "Total number of adoption request events, by pipeline status.",
		}, []string{"status"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests, by route pattern and status code.",
		}, []string{"route", "status"}),

		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency, by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncTokenIssued(tokenType string) {
	p.tokensIssued.WithLabelValues(tokenType).Inc()
}

func (p *PrometheusRecorder) IncAuthFailure(code string) {
	p.authFailures.WithLabelValues(code).Inc()
}

func (p *PrometheusRecorder) IncTokenBlacklisted() {
	p.tokensBlacklisted.Inc()
}

func (p *PrometheusRecorder) IncRateLimited(scope string) {
	p.rateLimited.WithLabelValues(scope).Inc()
}

func (p *PrometheusRecorder) IncRegistration(role, outcome string) {
	p.registrations.WithLabelValues(role, outcome).Inc()
}

func (p *PrometheusRecorder) IncAdoptionRequest(status string) {
	p.adoptionRequests.WithLabelValues(status).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}
