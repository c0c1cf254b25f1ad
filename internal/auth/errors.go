package auth

import (
	"fmt"
	"strings"
)

// Error codes surfaced to clients.
const (
	CodeAuthenticationFailed   = "authentication_failed"
	CodeTokenNotValid          = "token_not_valid"
	CodeUserNotFound           = "user_not_found"
	CodeUserInactive           = "user_inactive"
	CodePasswordChanged        = "password_changed"
	CodeBadAuthorizationHeader = "bad_authorization_header"
	CodeNoActiveAccount        = "no_active_account"
)

// Failure codes for a single token type attempt.
const (
	FailureInvalid     = "token_invalid"
	FailureExpired     = "token_expired"
	FailureWrongType   = "token_wrong_type"
	FailureNoID        = "token_no_id"
	FailureBlacklisted = "token_blacklisted"
)

// TokenFailure records why one token type rejected a token.
type TokenFailure struct {
	TokenType string `json:"token_type"`
	Code      string `json:"-"`
	Message   string `json:"message"`
}

// InvalidTokenError reports a token that could not be validated. When it
// comes from the validator, Failures holds one entry per attempted type in
// the order they were tried.
type InvalidTokenError struct {
	Code     string
	Detail   string
	Failures []TokenFailure
}

func (e *InvalidTokenError) Error() string {
	if len(e.Failures) == 0 {
		return fmt.Sprintf("invalid token (%s): %s", e.Code, e.Detail)
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.TokenType+": "+f.Message)
	}
	return fmt.Sprintf("invalid token (%s): %s", e.Code, strings.Join(parts, "; "))
}

// HasFailure reports whether any attempted type failed with code.
func (e *InvalidTokenError) HasFailure(code string) bool {
	for _, f := range e.Failures {
		if f.Code == code {
			return true
		}
	}
	return false
}

// AuthenticationFailedError reports a well-formed token or credential whose
// subject is not acceptable.
type AuthenticationFailedError struct {
	Code   string
	Detail string
}

func (e *AuthenticationFailedError) Error() string {
	return fmt.Sprintf("authentication failed (%s): %s", e.Code, e.Detail)
}

func authFailed(code, detail string) *AuthenticationFailedError {
	return &AuthenticationFailedError{Code: code, Detail: detail}
}
