package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxJTILength is the column limit for the jti claim.
const MaxJTILength = 255

// Token is the record of one issued JWT.
// Created at issuance and never mutated afterwards.
type Token struct {
	ID        uuid.UUID `json:"jwt_uuid"`
	Owner     Owner     `json:"owner"`
	JTI       string    `json:"jti"`
	Type      string    `json:"token_type"`
	Raw       string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"date_joined"`
}

// IsExpired reports whether the token expiry is before now.
func (t *Token) IsExpired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// BlacklistEntry marks a token record as permanently unusable.
type BlacklistEntry struct {
	TokenID   uuid.UUID `json:"token_id"`
	CreatedAt time.Time `json:"date_joined"`
}

// TokenPair is the response of a successful login or refresh.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}
