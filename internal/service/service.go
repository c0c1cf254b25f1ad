// Package service provides the application use-cases: registration,
// credential and token flows, pet listing and adoption intake.
package service

import (
	"errors"
	"time"
)

// Service errors.
var (
	ErrPetNotFound = errors.New("pet not found")
	ErrInvalidPage = errors.New("invalid page")
)

// Registration outcomes reported to metrics.
const (
	outcomeCreated  = "created"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
