package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/openfleet/fleettenant/internal/config"
	"github.com/openfleet/fleettenant/internal/http/features/login"
	"github.com/openfleet/fleettenant/internal/http/features/tenants"
	"github.com/openfleet/fleettenant/internal/http/middleware"
	"github.com/openfleet/fleettenant/internal/httputil"
	"github.com/openfleet/fleettenant/pkg/auth"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger          *slog.Logger
	AuthRouter      *auth.Router
	Provisioner     *auth.Provisioner
	TokenIssuer     *auth.TokenIssuer
	RateLimitConfig config.RateLimitConfig
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authentication, rate limited per IP
	loginHandler := login.NewHandler(cfg.Logger, cfg.AuthRouter, cfg.TokenIssuer)
	r.Group(func(r chi.Router) {
		r.Use(middleware.LoginRateLimiter(cfg.RateLimitConfig, cfg.Logger))
		r.Post("/v1/auth/login", loginHandler.Login)
	})

	// Tenant provisioning and management
	tenantsHandler := tenants.NewHandler(cfg.Logger, cfg.Provisioner)
	r.Post("/v1/tenants", tenantsHandler.Register)
	r.Get("/v1/tenants", tenantsHandler.List)
	r.Delete("/v1/tenants/{tenantRef}", tenantsHandler.Delete)
	r.Get("/v1/tenants/{tenantRef}/stats", tenantsHandler.Stats)
	r.Post("/v1/tenants/{tenantRef}/employees", tenantsHandler.AddEmployee)

	return r
}
