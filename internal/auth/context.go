package auth

import (
	"context"

	"github.com/pawhome/pawhome/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	principalKey     contextKey = "principal"
	authenticatorKey contextKey = "authenticator"
)

// Principal is the authenticated subject of a request.
type Principal struct {
	User  *model.User
	Token *Token
}

// ContextWithPrincipal adds the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext retrieves the principal from the context.
// Returns nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, ok := ctx.Value(principalKey).(*Principal)
	if !ok {
		return nil
	}
	return p
}

// MustPrincipalFromContext retrieves the principal from the context.
// Panics if not present (use only behind an authentication requirement).
func MustPrincipalFromContext(ctx context.Context) *Principal {
	p := PrincipalFromContext(ctx)
	if p == nil {
		panic("principal not found - ensure authentication is required on this route")
	}
	return p
}

// UserFromContext returns the authenticated user or nil.
func UserFromContext(ctx context.Context) *model.User {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.User
	}
	return nil
}

// ContextWithAuthenticator records that an authenticator ran for the request,
// whether or not it identified anyone.
func ContextWithAuthenticator(ctx context.Context) context.Context {
	return context.WithValue(ctx, authenticatorKey, true)
}

// AuthenticatorConfigured reports whether an authenticator ran for the request.
func AuthenticatorConfigured(ctx context.Context) bool {
	v, _ := ctx.Value(authenticatorKey).(bool)
	return v
}
