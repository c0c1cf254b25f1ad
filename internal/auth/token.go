package auth

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/config"
	"github.com/pawhome/pawhome/internal/model"
)

// Settings controls token issuance and validation.
type Settings struct {
	SigningKey       []byte
	Issuer           string
	Audience         string
	Leeway           time.Duration
	UserIDClaim      string
	TokenTypeClaim   string
	JTIClaim         string
	RevokeTokenClaim string
	CheckRevokeToken bool
	Lifetimes        map[string]time.Duration
}

// SettingsFromConfig converts loaded configuration into Settings.
func SettingsFromConfig(cfg config.JWTConfig) Settings {
	return Settings{
		SigningKey:       []byte(cfg.SigningKey),
		Issuer:           cfg.Issuer,
		Audience:         cfg.Audience,
		Leeway:           cfg.Leeway,
		UserIDClaim:      cfg.UserIDClaim,
		TokenTypeClaim:   cfg.TokenTypeClaim,
		JTIClaim:         cfg.JTIClaim,
		RevokeTokenClaim: cfg.RevokeTokenClaim,
		CheckRevokeToken: cfg.CheckRevokeToken,
		Lifetimes: map[string]time.Duration{
			config.TokenTypeAccess:  cfg.AccessTokenLifetime,
			config.TokenTypeRefresh: cfg.RefreshTokenLifetime,
		},
	}
}

// Token is a signed JWT together with its decoded claims.
type Token struct {
	Raw       string
	Type      string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    jwt.MapClaims
}

// StringClaim returns a string claim value.
func (t *Token) StringClaim(name string) (string, bool) {
	v, ok := t.Claims[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Issuer signs new tokens.
type Issuer struct {
	settings Settings
	now      func() time.Time
}

// NewIssuer creates an Issuer.
func NewIssuer(settings Settings) *Issuer {
	return &Issuer{settings: settings, now: time.Now}
}

// newJTI returns a random token id as 32 hex characters.
func newJTI() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// Issue signs a token of tokenType for user.
func (i *Issuer) Issue(user *model.User, tokenType string) (*Token, error) {
	lifetime, ok := i.settings.Lifetimes[tokenType]
	if !ok {
		return nil, fmt.Errorf("unknown token type %q", tokenType)
	}

	now := i.now().UTC().Truncate(time.Second)
	exp := now.Add(lifetime)
	jti := newJTI()

	claims := jwt.MapClaims{
		i.settings.TokenTypeClaim: tokenType,
		"exp":                     exp.Unix(),
		"iat":                     now.Unix(),
		i.settings.JTIClaim:       jti,
		i.settings.UserIDClaim:    user.ID.String(),
	}
	if i.settings.CheckRevokeToken {
		claims[i.settings.RevokeTokenClaim] = PasswordFingerprint(user.PasswordHash)
	}
	if i.settings.Issuer != "" {
		claims["iss"] = i.settings.Issuer
	}
	if i.settings.Audience != "" {
		claims["aud"] = i.settings.Audience
	}

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.settings.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Raw:       raw,
		Type:      tokenType,
		JTI:       jti,
		IssuedAt:  now,
		ExpiresAt: exp,
		Claims:    claims,
	}, nil
}

// IssuePair signs an access and a refresh token for user.
func (i *Issuer) IssuePair(user *model.User) (access, refresh *Token, err error) {
	access, err = i.Issue(user, config.TokenTypeAccess)
	if err != nil {
		return nil, nil, err
	}
	refresh, err = i.Issue(user, config.TokenTypeRefresh)
	if err != nil {
		return nil, nil, err
	}
	return access, refresh, nil
}

// BlacklistChecker answers whether a jti was revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// TokenType is one entry of the validator's ordered strategy list.
type TokenType struct {
	Name string
}

// Validator checks raw tokens against an ordered list of token types.
type Validator struct {
	settings  Settings
	types     []TokenType
	blacklist BlacklistChecker
	now       func() time.Time
}

// NewValidator creates a Validator that accepts authTypes, tried in order.
// blacklist may be nil to skip revocation lookups.
func NewValidator(settings Settings, authTypes []string, blacklist BlacklistChecker) (*Validator, error) {
	if len(authTypes) == 0 {
		return nil, errors.New("at least one token type is required")
	}
	types := make([]TokenType, 0, len(authTypes))
	for _, name := range authTypes {
		if _, ok := settings.Lifetimes[name]; !ok {
			return nil, fmt.Errorf("unknown token type %q", name)
		}
		types = append(types, TokenType{Name: name})
	}
	return &Validator{settings: settings, types: types, blacklist: blacklist, now: time.Now}, nil
}

// Types returns the configured token type names in order.
func (v *Validator) Types() []string {
	names := make([]string, len(v.types))
	for i, t := range v.types {
		names[i] = t.Name
	}
	return names
}

// Validate tries every configured token type in order and returns the first
// that accepts raw. When none does, the error is an *InvalidTokenError with
// one failure per type. Store errors from the blacklist lookup are returned
// as is.
func (v *Validator) Validate(ctx context.Context, raw string) (*Token, error) {
	return v.validate(ctx, raw, v.types)
}

// ValidateAs validates raw as exactly tokenType.
func (v *Validator) ValidateAs(ctx context.Context, raw, tokenType string) (*Token, error) {
	return v.validate(ctx, raw, []TokenType{{Name: tokenType}})
}

func (v *Validator) validate(ctx context.Context, raw string, types []TokenType) (*Token, error) {
	failures := make([]TokenFailure, 0, len(types))
	for _, tt := range types {
		tok, failure, err := v.check(ctx, raw, tt)
		if err != nil {
			return nil, err
		}
		if failure == nil {
			return tok, nil
		}
		failures = append(failures, *failure)
	}

	return nil, &InvalidTokenError{
		Code:     CodeAuthenticationFailed,
		Detail:   "Given token not valid for any token type",
		Failures: failures,
	}
}

func (v *Validator) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.settings.Leeway),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	}
	if v.settings.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.settings.Issuer))
	}
	if v.settings.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.settings.Audience))
	}
	return opts
}

// check runs one strategy. A nil failure with a nil error means success.
func (v *Validator) check(ctx context.Context, raw string, tt TokenType) (*Token, *TokenFailure, error) {
	fail := func(code, msg string) (*Token, *TokenFailure, error) {
		return nil, &TokenFailure{TokenType: tt.Name, Code: code, Message: msg}, nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.settings.SigningKey, nil
	}, v.parserOptions()...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fail(FailureExpired, "Token is expired")
		}
		return fail(FailureInvalid, "Token is invalid")
	}

	if typ, _ := claims[v.settings.TokenTypeClaim].(string); typ != tt.Name {
		return fail(FailureWrongType, "Token has wrong type")
	}

	jti, _ := claims[v.settings.JTIClaim].(string)
	if jti == "" {
		return fail(FailureNoID, "Token has no id")
	}

	if v.blacklist != nil {
		blacklisted, err := v.blacklist.IsBlacklisted(ctx, jti)
		if err != nil {
			return nil, nil, fmt.Errorf("check blacklist: %w", err)
		}
		if blacklisted {
			return fail(FailureBlacklisted, "Token is blacklisted")
		}
	}

	tok := &Token{Raw: raw, Type: tt.Name, JTI: jti, Claims: claims}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		tok.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		tok.IssuedAt = iat.Time
	}
	return tok, nil, nil
}
