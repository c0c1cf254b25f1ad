package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
)

// bearerType is the only accepted authorization header type.
const bearerType = "Bearer"

// TokenValidator checks a raw bearer token.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (*auth.Token, error)
}

// UserResolver maps a validated token to its user.
type UserResolver interface {
	ResolveUser(ctx context.Context, tok *auth.Token) (*model.User, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger    *slog.Logger
	Validator TokenValidator
	Resolver  UserResolver
	Metrics   metrics.Recorder
}

// Authenticate returns a middleware that authenticates bearer tokens.
// Requests without an Authorization header, or with a header of another
// type, continue anonymously. Any failure after that ends the request with
// a 401. On success the principal is stored in the request context.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.ContextWithAuthenticator(r.Context())
			r = r.WithContext(ctx)

			reject := func(err error) {
				code, ok := authErrorCode(err)
				if !ok {
					cfg.Logger.Error("authentication error",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(ctx)),
					)
					writeInternalError(w)
					return
				}
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", code),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(ctx)),
				)
				recorder.IncAuthFailure(code)
				WriteAuthError(w, err)
			}

			raw, ok, err := extractBearer(r.Header.Get("Authorization"))
			if err != nil {
				reject(err)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			tok, err := cfg.Validator.Validate(ctx, raw)
			if err != nil {
				reject(err)
				return
			}

			user, err := cfg.Resolver.ResolveUser(ctx, tok)
			if err != nil {
				reject(err)
				return
			}

			ctx = auth.ContextWithPrincipal(ctx, &auth.Principal{User: user, Token: tok})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the token of a "Bearer <token>" header. ok is false
// for an empty header or one of another type.
func extractBearer(header string) (token string, ok bool, err error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || parts[0] != bearerType {
		return "", false, nil
	}
	if len(parts) != 2 {
		return "", false, &auth.AuthenticationFailedError{
			Code:   auth.CodeBadAuthorizationHeader,
			Detail: "Authorization header must contain two space-delimited values",
		}
	}
	return parts[1], true, nil
}
