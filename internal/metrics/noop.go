package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTokenIssued is a no-op.
func (n *NoopRecorder) IncTokenIssued(string) {}

// IncAuthFailure is a no-op.
func (n *NoopRecorder) IncAuthFailure(string) {}

// IncTokenBlacklisted is a no-op.
func (n *NoopRecorder) IncTokenBlacklisted() {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited(string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(string, string) {}

// IncAdoptionRequest is a no-op.
func (n *NoopRecorder) IncAdoptionRequest(string) {}

// ObserveHTTPRequest is a no-op.
func (n *NoopRecorder) ObserveHTTPRequest(string, int, time.Duration) {}
