package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/middleware"
)

// Routes bundles the handlers mounted by NewRouter.
type Routes struct {
	Health       *HealthHandler
	Registration *RegistrationHandler
	Auth         *AuthHandler
	Pets         *PetHandler
	Adoptions    *AdoptionHandler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// RouterConfig holds the middleware configuration of NewRouter.
type RouterConfig struct {
	Logger      *slog.Logger
	Metrics     metrics.Recorder
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
}

// NewRouter configures the chi router with all routes and middleware.
// Token endpoints skip bearer authentication; everything else under
// /api/v1 runs it and applies per-route permissions.
func NewRouter(cfg RouterConfig, routes Routes) *chi.Mux {
	h := New()
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/healthz", routes.Health.Healthz)
	r.Get("/readyz", routes.Health.Readyz)
	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.MaxBodySize(cfg.MaxBodySize))
		r.Use(middleware.RequireJSON)

		r.Route("/auth/token", func(r chi.Router) {
			r.With(middleware.RateLimitIP(cfg.RateLimit)).Post("/", routes.Auth.ObtainPair)
			r.Post("/refresh", routes.Auth.Refresh)
			r.Post("/verify", routes.Auth.Verify)
			r.Post("/blacklist", routes.Auth.Blacklist)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Auth))

			authenticated := middleware.Require(middleware.IsAuthenticated)

			r.Post("/shelters", routes.Registration.RegisterShelter)
			r.With(middleware.Require(middleware.IsAdmin)).Post("/admins", routes.Registration.RegisterAdmin)

			r.With(authenticated).Post("/auth/logout", routes.Auth.Logout)
			r.With(authenticated).Get("/users/me", routes.Auth.Me)
			r.With(authenticated).Post("/users/me/password", routes.Auth.ChangePassword)

			r.Get("/pets", routes.Pets.List)
			r.Get("/pets/{petID}", routes.Pets.Get)
			r.With(middleware.Require(middleware.IsShelter)).Post("/pets", routes.Pets.Create)
			r.Get("/pet-types", routes.Pets.Types)
			r.Get("/pet-sexes", routes.Pets.Sexes)

			r.Post("/adoption-requests", routes.Adoptions.Submit)
		})
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
