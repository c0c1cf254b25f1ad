package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/service"
)

// TokenService implements the token lifecycle and account self-service.
type TokenService interface {
	ObtainPair(ctx context.Context, in service.Credentials) (*model.TokenPair, error)
	Refresh(ctx context.Context, in service.RefreshRequest) (*model.TokenPair, error)
	Verify(ctx context.Context, in service.VerifyRequest) error
	Blacklist(ctx context.Context, in service.RefreshRequest) error
	Logout(ctx context.Context, p *auth.Principal, in service.LogoutRequest) error
	ChangePassword(ctx context.Context, user *model.User, in service.PasswordChange) (*model.TokenPair, error)
	Me(ctx context.Context, user *model.User) (*service.Profile, error)
}

// AuthHandler handles token and account endpoints.
type AuthHandler struct {
	svc    TokenService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc TokenService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

// ObtainPair handles POST /api/v1/auth/token
func (h *AuthHandler) ObtainPair(w http.ResponseWriter, r *http.Request) {
	var in service.Credentials
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	pair, err := h.svc.ObtainPair(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/token/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var in service.RefreshRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	pair, err := h.svc.Refresh(r.Context(), in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// Verify handles POST /api/v1/auth/token/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var in service.VerifyRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Verify(r.Context(), in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Blacklist handles POST /api/v1/auth/token/blacklist
func (h *AuthHandler) Blacklist(w http.ResponseWriter, r *http.Request) {
	var in service.RefreshRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Blacklist(r.Context(), in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var in service.LogoutRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.svc.Logout(r.Context(), auth.MustPrincipalFromContext(r.Context()), in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/users/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Me(r.Context(), auth.MustPrincipalFromContext(r.Context()).User)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// ChangePassword handles POST /api/v1/users/me/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in service.PasswordChange
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	pair, err := h.svc.ChangePassword(r.Context(), auth.MustPrincipalFromContext(r.Context()).User, in)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}
