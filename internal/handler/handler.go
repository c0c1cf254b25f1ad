// Package handler provides the HTTP handlers of the API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pawhome/pawhome/internal/middleware"
	"github.com/pawhome/pawhome/internal/service"
	"github.com/pawhome/pawhome/internal/validate"
)

// Error codes written by handlers.
const (
	codeInvalidRequestData = "invalid_request_data"
	codeParseError         = "parse_error"
	codeNotFound           = "not_found"
	codeMethodNotAllowed   = "method_not_allowed"
)

// Handler serves the router-level fallbacks.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, http.StatusNotFound, middleware.ErrorResponse{
		Code:   codeNotFound,
		Detail: "Not found.",
	})
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	middleware.WriteError(w, http.StatusMethodNotAllowed, middleware.ErrorResponse{
		Code:   codeMethodNotAllowed,
		Detail: fmt.Sprintf("Method %q not allowed.", r.Method),
	})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errBadJSON wraps body decoding failures.
type errBadJSON struct{ err error }

func (e *errBadJSON) Error() string { return "JSON parse error - " + e.err.Error() }

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched so that field validation reports what is missing.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return tooLarge
	}
	return &errBadJSON{err: err}
}

// writeError maps service errors to HTTP responses. Unknown errors are
// logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if middleware.WriteAuthError(w, err) {
		return
	}

	if errs, ok := validate.FromError(err); ok {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorResponse{
			Code:   codeInvalidRequestData,
			Detail: errs,
		})
		return
	}

	var badJSON *errBadJSON
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &badJSON):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrorResponse{
			Code:   codeParseError,
			Detail: badJSON.Error(),
		})
	case errors.As(err, &tooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, middleware.ErrorResponse{
			Code:   middleware.CodePayloadTooLarge,
			Detail: fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit),
		})
	case errors.Is(err, service.ErrPetNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrorResponse{
			Code:   codeNotFound,
			Detail: "Not found.",
		})
	case errors.Is(err, service.ErrInvalidPage):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrorResponse{
			Code:   codeNotFound,
			Detail: "Invalid page.",
		})
	default:
		logger.Error("request failed",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrorResponse{
			Code:   middleware.CodeInternalError,
			Detail: "A server error occurred.",
		})
	}
}
