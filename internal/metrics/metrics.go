// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// Authentication
	IncTokenIssued(tokenType string)
	IncAuthFailure(code string)
	IncTokenBlacklisted()
	IncRateLimited(scope string)

	// Registration outcome: "created", "invalid", "conflict" or "error".
	IncRegistration(role, outcome string)

	// Adoption pipeline status: "published", "dropped", "delivered",
	// "failed" or "dead_lettered".
	IncAdoptionRequest(status string)

	// HTTP
	ObserveHTTPRequest(route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
