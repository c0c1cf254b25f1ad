// Package main is the entrypoint for the PawHome API server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pawhome/pawhome/internal/adoption"
	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/cache"
	"github.com/pawhome/pawhome/internal/config"
	"github.com/pawhome/pawhome/internal/handler"
	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/middleware"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/server"
	"github.com/pawhome/pawhome/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env file", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	if cfg.AutoMigrate {
		applied, err := repo.Migrate(ctx)
		if err != nil {
			logger.Error("failed to apply migrations", slog.String("error", sanitizeError(err, cfg.DatabaseURL)))
			repo.Close()
			os.Exit(1)
		}
		logger.Info("migrations applied", slog.Int("count", len(applied)), slog.Any("versions", applied))
	}

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	recorder := metrics.NewPrometheus()
	hasher := auth.NewHasher(auth.DefaultArgon2Params)
	settings := auth.SettingsFromConfig(cfg.JWT)

	registrationService := service.NewRegistrationService(repo, hasher, cfg.PhoneDefaultRegion, logger, recorder)
	authService, err := service.NewAuthService(repo, cacheClient, hasher, settings, service.AuthOptionsFromConfig(cfg.JWT), logger, recorder)
	if err != nil {
		logger.Error("failed to build auth service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	petService := service.NewPetService(repo, cfg.PageSize, logger)
	publisher := adoption.NewPublisher(cacheClient.Client(), logger, recorder)
	adoptionService := service.NewAdoptionService(repo, publisher, cfg.PhoneDefaultRegion, logger)

	validator, err := auth.NewValidator(settings, cfg.JWT.AuthTokenTypes, authService)
	if err != nil {
		logger.Error("failed to build token validator", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker := adoption.NewWorker(
		cacheClient.Client(),
		adoption.NewLogNotifier(repo, logger),
		logger,
		adoption.NewConsumerID(),
		recorder,
	)
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("adoption worker stopped", slog.String("error", err.Error()))
		}
	}()

	router := handler.NewRouter(handler.RouterConfig{
		Logger:  logger,
		Metrics: recorder,
		Auth: middleware.AuthConfig{
			Logger:    logger,
			Validator: validator,
			Resolver:  auth.NewResolver(repo, settings),
			Metrics:   recorder,
		},
		RateLimit: middleware.RateLimitConfig{
			Logger:  logger,
			Limiter: cacheClient,
			Metrics: recorder,
			Enabled: cfg.RateLimitEnabled,
			Scope:   "token",
			RPS:     cfg.RateLimitTokenRPS,
			Burst:   cfg.RateLimitTokenBurst,
		},
		Security:    middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()},
		CORS:        middleware.DefaultCORSConfig(cfg.GetCORSAllowedOrigins()),
		MaxBodySize: cfg.MaxRequestBodySize,
	}, handler.Routes{
		Health:       handler.NewHealthHandler(repo, cacheClient, logger),
		Registration: handler.NewRegistrationHandler(registrationService, logger),
		Auth:         handler.NewAuthHandler(authService, logger),
		Pets:         handler.NewPetHandler(petService, logger),
		Adoptions:    handler.NewAdoptionHandler(adoptionService, logger),
		Metrics:      recorder.Handler(),
	})

	srv := server.New(router, cfg, logger)

	// Registered first, stopped last.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	srv.OnShutdown("adoption-worker", worker.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"auth_token_types", cfg.JWT.AuthTokenTypes,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "pawhome-api")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password of a DSN, keeping the user name.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		if username := parsed.User.Username(); username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError strips secrets from driver errors before they are logged.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
