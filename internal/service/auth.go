package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/config"
	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/validate"
)

// AuthStore is the credential store and revocation registry.
type AuthStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	GetProfile(ctx context.Context, owner model.Owner) (model.Profile, error)
	CreateToken(ctx context.Context, token *model.Token) error
	BlacklistToken(ctx context.Context, token *model.Token) (bool, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// BlacklistCache holds revocation markers in front of the store.
type BlacklistCache interface {
	MarkBlacklisted(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthOptions toggles token lifecycle behavior.
type AuthOptions struct {
	RotateRefreshTokens    bool
	BlacklistAfterRotation bool
	UpdateLastLogin        bool
}

// AuthOptionsFromConfig extracts AuthOptions from loaded configuration.
func AuthOptionsFromConfig(cfg config.JWTConfig) AuthOptions {
	return AuthOptions{
		RotateRefreshTokens:    cfg.RotateRefreshTokens,
		BlacklistAfterRotation: cfg.BlacklistAfterRotation,
		UpdateLastLogin:        cfg.UpdateLastLogin,
	}
}

var errNoActiveAccount = &auth.AuthenticationFailedError{
	Code:   auth.CodeNoActiveAccount,
	Detail: "No active account found with the given credentials",
}

// AuthService implements the credential and token flows.
type AuthService struct {
	store    AuthStore
	cache    BlacklistCache
	hasher   PasswordHasher
	issuer   *auth.Issuer
	verifier *auth.Validator
	resolver *auth.Resolver
	opts     AuthOptions
	idClaim  string
	logger   *slog.Logger
	metrics  metrics.Recorder
	now      func() time.Time

	// dummyHash is verified when the account does not exist so that unknown
	// emails take as long as wrong passwords.
	dummyHash string
}

// NewAuthService creates an AuthService. cache may be nil.
func NewAuthService(store AuthStore, cache BlacklistCache, hasher PasswordHasher, settings auth.Settings, opts AuthOptions, logger *slog.Logger, recorder metrics.Recorder) (*AuthService, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	s := &AuthService{
		store:    store,
		cache:    cache,
		hasher:   hasher,
		issuer:   auth.NewIssuer(settings),
		resolver: auth.NewResolver(store, settings),
		opts:     opts,
		idClaim:  settings.UserIDClaim,
		logger:   logger.With("component", "service.auth"),
		metrics:  recorder,
		now:      time.Now,
	}

	verifier, err := auth.NewValidator(settings, []string{config.TokenTypeAccess, config.TokenTypeRefresh}, s)
	if err != nil {
		return nil, fmt.Errorf("build verifier: %w", err)
	}
	s.verifier = verifier

	s.dummyHash, err = hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("derive dummy hash: %w", err)
	}
	return s, nil
}

// IsBlacklisted consults the marker cache first and falls back to the
// store. Cache failures are logged and do not reject the token.
func (s *AuthService) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.IsBlacklisted(ctx, jti)
		if err != nil {
			s.logger.Warn("blacklist cache lookup failed", "error", err)
		} else if hit {
			return true, nil
		}
	}
	return s.store.IsBlacklisted(ctx, jti)
}

// ObtainPair exchanges credentials for an access and refresh token.
func (s *AuthService) ObtainPair(ctx context.Context, in Credentials) (*model.TokenPair, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("get user: %w", err)
		}
		_, _ = s.hasher.Verify(in.Password, s.dummyHash)
		return nil, s.loginFailed("unknown_email")
	}

	ok, err := s.hasher.Verify(in.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, s.loginFailed("wrong_password")
	}
	if !user.IsActive {
		return nil, s.loginFailed("inactive")
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.opts.UpdateLastLogin {
		if err := s.store.UpdateLastLogin(ctx, user.ID, s.now().UTC()); err != nil {
			return nil, fmt.Errorf("update last login: %w", err)
		}
	}

	s.logger.Info("token pair issued", "user_uuid", user.ID)
	return pair, nil
}

func (s *AuthService) loginFailed(reason string) error {
	s.logger.Warn("login rejected", "reason", reason)
	s.metrics.IncAuthFailure(auth.CodeNoActiveAccount)
	return errNoActiveAccount
}

// Refresh exchanges a refresh token for a new access token. With rotation
// enabled a new refresh token is issued too; the old one stays valid unless
// blacklisting after rotation is enabled.
func (s *AuthService) Refresh(ctx context.Context, in RefreshRequest) (*model.TokenPair, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tok, err := s.verifier.ValidateAs(ctx, in.Refresh, config.TokenTypeRefresh)
	if err != nil {
		return nil, s.tokenNotValid(err)
	}

	user, err := s.resolver.ResolveUser(ctx, tok)
	if err != nil {
		return nil, s.authError(err)
	}

	access, err := s.issue(ctx, user, config.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	pair := &model.TokenPair{Access: access.Raw}

	if s.opts.RotateRefreshTokens {
		if s.opts.BlacklistAfterRotation {
			if _, err := s.blacklist(ctx, tok, user); err != nil {
				return nil, err
			}
		}
		refresh, err := s.issue(ctx, user, config.TokenTypeRefresh)
		if err != nil {
			return nil, err
		}
		pair.Refresh = refresh.Raw
	}

	return pair, nil
}

// Verify checks a token of any type. It does not resolve the user.
func (s *AuthService) Verify(ctx context.Context, in VerifyRequest) error {
	if err := in.validate(); err != nil {
		return err
	}
	if _, err := s.verifier.Validate(ctx, in.Token); err != nil {
		return s.tokenNotValid(err)
	}
	return nil
}

// Blacklist revokes a refresh token.
func (s *AuthService) Blacklist(ctx context.Context, in RefreshRequest) error {
	if err := in.validate(); err != nil {
		return err
	}

	tok, err := s.verifier.ValidateAs(ctx, in.Refresh, config.TokenTypeRefresh)
	if err != nil {
		return s.tokenNotValid(err)
	}
	_, err = s.blacklist(ctx, tok, nil)
	return err
}

// Logout revokes the access token of the current request and, when given,
// a refresh token of the same user.
func (s *AuthService) Logout(ctx context.Context, p *auth.Principal, in LogoutRequest) error {
	if in.Refresh != "" {
		refresh, err := s.verifier.ValidateAs(ctx, in.Refresh, config.TokenTypeRefresh)
		if err != nil {
			return s.tokenNotValid(err)
		}
		if owner, _ := refresh.StringClaim(s.idClaim); owner != p.User.ID.String() {
			return &auth.InvalidTokenError{
				Code:   auth.CodeTokenNotValid,
				Detail: "Token does not belong to the current user",
			}
		}
		if _, err := s.blacklist(ctx, refresh, p.User); err != nil {
			return err
		}
	}

	if _, err := s.blacklist(ctx, p.Token, p.User); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_uuid", p.User.ID)
	return nil
}

// ChangePassword replaces the password of user. Every token issued before
// the change stops resolving; the returned pair is bound to the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, user *model.User, in PasswordChange) (*model.TokenPair, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(in.CurrentPassword, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		errs := validate.Errors{}
		errs.AddCode("current_password", validate.CodeInvalid, labelCurrentPassword)
		return nil, errs
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.SetPassword(ctx, user.ID, hash); err != nil {
		return nil, fmt.Errorf("set password: %w", err)
	}

	updated := *user
	updated.PasswordHash = hash
	s.logger.Info("password changed", "user_uuid", user.ID)
	return s.issuePair(ctx, &updated)
}

// Profile is the current user with its role profile.
type Profile struct {
	User    *model.User   `json:"user"`
	Profile model.Profile `json:"profile,omitempty"`
}

// Me returns user together with its role profile.
func (s *AuthService) Me(ctx context.Context, user *model.User) (*Profile, error) {
	out := &Profile{User: user}
	if user.Role == "" {
		return out, nil
	}

	profile, err := s.store.GetProfile(ctx, user.Owner())
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return out, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	out.Profile = profile
	return out, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	access, err := s.issue(ctx, user, config.TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(ctx, user, config.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &model.TokenPair{Access: access.Raw, Refresh: refresh.Raw}, nil
}

// issue signs a token and records it in the registry.
func (s *AuthService) issue(ctx context.Context, user *model.User, tokenType string) (*auth.Token, error) {
	tok, err := s.issuer.Issue(user, tokenType)
	if err != nil {
		return nil, fmt.Errorf("issue %s token: %w", tokenType, err)
	}

	record := &model.Token{
		ID:        uuid.New(),
		Owner:     user.Owner(),
		JTI:       tok.JTI,
		Type:      tok.Type,
		Raw:       tok.Raw,
		ExpiresAt: tok.ExpiresAt,
		CreatedAt: tok.IssuedAt,
	}
	if err := s.store.CreateToken(ctx, record); err != nil {
		return nil, fmt.Errorf("record %s token: %w", tokenType, err)
	}

	s.metrics.IncTokenIssued(tokenType)
	return tok, nil
}

// blacklist adds tok to the registry and the marker cache. owner may be nil
// when the caller did not resolve the user.
func (s *AuthService) blacklist(ctx context.Context, tok *auth.Token, owner *model.User) (bool, error) {
	record := &model.Token{
		JTI:       tok.JTI,
		Type:      tok.Type,
		Raw:       tok.Raw,
		ExpiresAt: tok.ExpiresAt,
		CreatedAt: tok.IssuedAt,
	}
	if owner != nil {
		record.Owner = owner.Owner()
	} else if raw, ok := tok.StringClaim(s.idClaim); ok {
		id, err := uuid.Parse(raw)
		if err != nil {
			return false, &auth.InvalidTokenError{
				Code:   auth.CodeTokenNotValid,
				Detail: "Token contained no recognizable user identification",
			}
		}
		record.Owner = model.Owner{UserID: id}
	}

	created, err := s.store.BlacklistToken(ctx, record)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return false, &auth.AuthenticationFailedError{Code: auth.CodeUserNotFound, Detail: "User not found"}
		}
		return false, fmt.Errorf("blacklist token: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.MarkBlacklisted(ctx, tok.JTI, tok.ExpiresAt.Sub(s.now())); err != nil {
			s.logger.Warn("failed to cache blacklist marker", "error", err)
		}
	}
	if created {
		s.metrics.IncTokenBlacklisted()
	}
	return created, nil
}

// tokenNotValid flattens validator failures into a token_not_valid error
// whose detail is the first failure message.
func (s *AuthService) tokenNotValid(err error) error {
	var invalid *auth.InvalidTokenError
	if !errors.As(err, &invalid) {
		return err
	}
	detail := "Token is invalid or expired"
	if len(invalid.Failures) > 0 {
		detail = invalid.Failures[0].Message
	}
	s.metrics.IncAuthFailure(auth.CodeTokenNotValid)
	return &auth.InvalidTokenError{
		Code:     auth.CodeTokenNotValid,
		Detail:   detail,
		Failures: invalid.Failures,
	}
}

func (s *AuthService) authError(err error) error {
	var failed *auth.AuthenticationFailedError
	var invalid *auth.InvalidTokenError
	switch {
	case errors.As(err, &failed):
		s.metrics.IncAuthFailure(failed.Code)
	case errors.As(err, &invalid):
		s.metrics.IncAuthFailure(invalid.Code)
	}
	return err
}
