package middleware

import (
	"fmt"
	"mime"
	"net/http"
)

// RequireJSON returns a middleware that rejects request bodies that are not
// declared as application/json with a 415. Requests without a body pass.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasBody(r) {
			next.ServeHTTP(w, r)
			return
		}

		contentType := r.Header.Get("Content-Type")
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err != nil || mediaType != "application/json" {
			WriteError(w, http.StatusUnsupportedMediaType, ErrorResponse{
				Code:   CodeUnsupportedMediaType,
				Detail: fmt.Sprintf("Unsupported media type %q in request.", contentType),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodDelete:
		return false
	}
	return r.ContentLength != 0 && r.Body != nil && r.Body != http.NoBody
}
