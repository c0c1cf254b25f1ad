package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/model"
)

// UserStore looks up identities by ID. A missing identity is reported as an
// error matching model.ErrUserNotFound.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Resolver maps a validated token to the user it was issued for.
type Resolver struct {
	store    UserStore
	settings Settings
}

// NewResolver creates a Resolver.
func NewResolver(store UserStore, settings Settings) *Resolver {
	return &Resolver{store: store, settings: settings}
}

// ResolveUser returns the active user behind tok. When the revocation claim
// check is enabled, tokens issued before the last password change fail with
// password_changed.
func (r *Resolver) ResolveUser(ctx context.Context, tok *Token) (*model.User, error) {
	raw, ok := tok.StringClaim(r.settings.UserIDClaim)
	if !ok || raw == "" {
		return nil, &InvalidTokenError{
			Code:   CodeTokenNotValid,
			Detail: "Token contained no recognizable user identification",
		}
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, authFailed(CodeUserNotFound, "User not found")
	}

	user, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, authFailed(CodeUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	if !user.IsActive {
		return nil, authFailed(CodeUserInactive, "User is inactive")
	}

	if r.settings.CheckRevokeToken {
		claim, _ := tok.StringClaim(r.settings.RevokeTokenClaim)
		current := PasswordFingerprint(user.PasswordHash)
		if subtle.ConstantTimeCompare([]byte(claim), []byte(current)) != 1 {
			return nil, authFailed(CodePasswordChanged, "The user's password has been changed.")
		}
	}

	return user, nil
}
