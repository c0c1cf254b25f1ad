package metrics

import (
	"strconv"
	"sync"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TokensIssued      map[string]uint64
	AuthFailures      map[string]uint64
	TokensBlacklisted uint64
	RateLimited       map[string]uint64
	Registrations     map[string]uint64 // key: role/outcome
	AdoptionRequests  map[string]uint64
	HTTPRequests      map[string]uint64 // key: route/status
	HTTPDurationSum   time.Duration
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	mu   sync.Mutex
	snap Snapshot
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{snap: Snapshot{
		TokensIssued:     map[string]uint64{},
		AuthFailures:     map[string]uint64{},
		RateLimited:      map[string]uint64{},
		Registrations:    map[string]uint64{},
		AdoptionRequests: map[string]uint64{},
		HTTPRequests:     map[string]uint64{},
	}}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		TokensIssued:      copyCounts(m.snap.TokensIssued),
		AuthFailures:      copyCounts(m.snap.AuthFailures),
		TokensBlacklisted: m.snap.TokensBlacklisted,
		RateLimited:       copyCounts(m.snap.RateLimited),
		Registrations:     copyCounts(m.snap.Registrations),
		AdoptionRequests:  copyCounts(m.snap.AdoptionRequests),
		HTTPRequests:      copyCounts(m.snap.HTTPRequests),
		HTTPDurationSum:   m.snap.HTTPDurationSum,
	}
}

func copyCounts(in map[string]uint64) map[string]uint64 {
	out := make(map[string]uint64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

// IncTokenIssued counts an issued token by type.
func (m *InMemoryRecorder) IncTokenIssued(tokenType string) {
	m.inc(m.snap.TokensIssued, tokenType)
}

// IncAuthFailure counts an authentication failure by code.
func (m *InMemoryRecorder) IncAuthFailure(code string) {
	m.inc(m.snap.AuthFailures, code)
}

// IncTokenBlacklisted counts a revoked token.
func (m *InMemoryRecorder) IncTokenBlacklisted() {
	m.mu.Lock()
	m.snap.TokensBlacklisted++
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request by scope.
func (m *InMemoryRecorder) IncRateLimited(scope string) {
	m.inc(m.snap.RateLimited, scope)
}

// IncRegistration counts a registration attempt by role and outcome.
func (m *InMemoryRecorder) IncRegistration(role, outcome string) {
	m.inc(m.snap.Registrations, role+"/"+outcome)
}

// IncAdoptionRequest counts an adoption pipeline event by status.
func (m *InMemoryRecorder) IncAdoptionRequest(status string) {
	m.inc(m.snap.AdoptionRequests, status)
}

// ObserveHTTPRequest counts a served request by route and status.
func (m *InMemoryRecorder) ObserveHTTPRequest(route string, status int, duration time.Duration) {
	m.mu.Lock()
	m.snap.HTTPRequests[route+"/"+strconv.Itoa(status)]++
	m.snap.HTTPDurationSum += duration
	m.mu.Unlock()
}
