package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pawhome/pawhome/internal/auth"
)

// Error codes produced outside the auth and validation packages.
const (
	CodeNotAuthenticated     = "not_authenticated"
	CodePermissionDenied     = "permission_denied"
	CodeThrottled            = "throttled"
	CodeUnsupportedMediaType = "unsupported_media_type"
	CodePayloadTooLarge      = "payload_too_large"
	CodeInternalError        = "internal_error"
)

// ErrorResponse is the JSON envelope of every error response.
type ErrorResponse struct {
	Code     string              `json:"code"`
	Detail   any                 `json:"detail"`
	Messages []auth.TokenFailure `json:"messages,omitempty"`
}

// WriteError writes resp with status.
func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteAuthError writes the 401 response for token and identity errors.
// It reports false, writing nothing, when err is neither.
func WriteAuthError(w http.ResponseWriter, err error) bool {
	var invalid *auth.InvalidTokenError
	var failed *auth.AuthenticationFailedError
	switch {
	case errors.As(err, &invalid):
		WriteError(w, http.StatusUnauthorized, ErrorResponse{
			Code:     invalid.Code,
			Detail:   invalid.Detail,
			Messages: invalid.Failures,
		})
	case errors.As(err, &failed):
		WriteError(w, http.StatusUnauthorized, ErrorResponse{Code: failed.Code, Detail: failed.Detail})
	default:
		return false
	}
	return true
}

// authErrorCode returns the client-facing code of a token or identity error.
func authErrorCode(err error) (string, bool) {
	var invalid *auth.InvalidTokenError
	if errors.As(err, &invalid) {
		return invalid.Code, true
	}
	var failed *auth.AuthenticationFailedError
	if errors.As(err, &failed) {
		return failed.Code, true
	}
	return "", false
}

func writeInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, ErrorResponse{
		Code:   CodeInternalError,
		Detail: "A server error occurred.",
	})
}
