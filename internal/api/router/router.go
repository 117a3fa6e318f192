package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fertilitycare/patient-portal/internal/appointments"
	httpmiddleware "github.com/fertilitycare/patient-portal/internal/http/middleware"
	"github.com/fertilitycare/patient-portal/internal/navigation"
	"github.com/fertilitycare/patient-portal/internal/treatments"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	SessionSecret      string
	CORSAllowedOrigins []string
	RateLimiter        *httpmiddleware.RateLimiter
	MetricsHandler     http.Handler

	Appointments *appointments.Handler
	Treatments   *treatments.Handler

	// Optional dependency checks reported by /health (e.g. redis, postgres).
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(httpmiddleware.OptionalSession(cfg.SessionSecret))
		if cfg.RateLimiter != nil {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
		}

		api.Get("/navigation", navigation.Handler())

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.RequireSession(cfg.SessionSecret))
			if cfg.Appointments != nil {
				private.Mount("/appointments", cfg.Appointments.Routes())
			}
			if cfg.Treatments != nil {
				private.Mount("/treatments", cfg.Treatments.Routes())
			}
		})
	})

	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp[name] = err.Error()
				resp["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
