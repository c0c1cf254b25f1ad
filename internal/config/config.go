// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Token type names understood by the token validator.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// minSigningKeyLength is the shortest HS256 key accepted outside development.
const minSigningKeyLength = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	JWT JWTConfig

	// Pagination
	PageSize int `env:"PAGE_SIZE" envDefault:"10"`

	// Rate limiting (token endpoint only)
	RateLimitEnabled    bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitTokenRPS   int  `env:"RATE_LIMIT_TOKEN_RPS" envDefault:"5"`
	RateLimitTokenBurst int  `env:"RATE_LIMIT_TOKEN_BURST" envDefault:"10"`

	// Region used to parse phone numbers without a leading +. Empty requires
	// international format.
	PhoneDefaultRegion string `env:"PHONE_DEFAULT_REGION" envDefault:""`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// JWTConfig controls token issuance and validation.
type JWTConfig struct {
	SigningKey string `env:"JWT_SIGNING_KEY,required"`
	Issuer     string `env:"JWT_ISSUER" envDefault:""`
	Audience   string `env:"JWT_AUDIENCE" envDefault:""`

	AccessTokenLifetime  time.Duration `env:"JWT_ACCESS_TOKEN_LIFETIME" envDefault:"15m"`
	RefreshTokenLifetime time.Duration `env:"JWT_REFRESH_TOKEN_LIFETIME" envDefault:"24h"`
	Leeway               time.Duration `env:"JWT_LEEWAY" envDefault:"0s"`

	// Ordered list of token types accepted on authenticated requests.
	AuthTokenTypes []string `env:"JWT_AUTH_TOKEN_TYPES" envDefault:"access" envSeparator:","`

	UserIDClaim      string `env:"JWT_USER_ID_CLAIM" envDefault:"user_uuid"`
	TokenTypeClaim   string `env:"JWT_TOKEN_TYPE_CLAIM" envDefault:"token_type"`
	JTIClaim         string `env:"JWT_JTI_CLAIM" envDefault:"jti"`
	RevokeTokenClaim string `env:"JWT_REVOKE_TOKEN_CLAIM" envDefault:"hash_password"`
	CheckRevokeToken bool   `env:"JWT_CHECK_REVOKE_TOKEN" envDefault:"true"`

	RotateRefreshTokens    bool `env:"JWT_ROTATE_REFRESH_TOKENS" envDefault:"true"`
	BlacklistAfterRotation bool `env:"JWT_BLACKLIST_AFTER_ROTATION" envDefault:"false"`
	UpdateLastLogin        bool `env:"JWT_UPDATE_LAST_LOGIN" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Lifetime returns the configured lifetime for a token type.
func (j JWTConfig) Lifetime(tokenType string) (time.Duration, bool) {
	switch tokenType {
	case TokenTypeAccess:
		return j.AccessTokenLifetime, true
	case TokenTypeRefresh:
		return j.RefreshTokenLifetime, true
	default:
		return 0, false
	}
}

// Validate checks settings that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWT.AuthTokenTypes) == 0 {
		errs = append(errs, errors.New("JWT_AUTH_TOKEN_TYPES must name at least one token type"))
	}
	for _, tokenType := range c.JWT.AuthTokenTypes {
		if _, ok := c.JWT.Lifetime(tokenType); !ok {
			errs = append(errs, fmt.Errorf("unknown token type %q in JWT_AUTH_TOKEN_TYPES", tokenType))
		}
	}

	if c.JWT.UserIDClaim == "" || c.JWT.TokenTypeClaim == "" || c.JWT.JTIClaim == "" {
		errs = append(errs, errors.New("JWT claim names must not be empty"))
	}
	if c.JWT.CheckRevokeToken && c.JWT.RevokeTokenClaim == "" {
		errs = append(errs, errors.New("JWT_REVOKE_TOKEN_CLAIM is required when JWT_CHECK_REVOKE_TOKEN is set"))
	}
	if c.JWT.AccessTokenLifetime <= 0 || c.JWT.RefreshTokenLifetime <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	if !c.IsDevelopment() && len(c.JWT.SigningKey) < minSigningKeyLength {
		errs = append(errs, fmt.Errorf("JWT_SIGNING_KEY must be at least %d bytes", minSigningKeyLength))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("PAGE_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
