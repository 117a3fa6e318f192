package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/fertilitycare/patient-portal/internal/api/router"
	"github.com/fertilitycare/patient-portal/internal/app/bootstrap"
	"github.com/fertilitycare/patient-portal/internal/appointments"
	"github.com/fertilitycare/patient-portal/internal/backend"
	appconfig "github.com/fertilitycare/patient-portal/internal/config"
	httpmiddleware "github.com/fertilitycare/patient-portal/internal/http/middleware"
	"github.com/fertilitycare/patient-portal/internal/observability/metrics"
	"github.com/fertilitycare/patient-portal/internal/patients"
	"github.com/fertilitycare/patient-portal/internal/treatments"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

func main() {
	envErr := godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithWriter(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if envErr != nil && !cfg.IsProduction() {
		logger.Debug("no .env file found, using environment variables")
	}
	logger.Info("starting patient portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendBaseURL,
	)
	if cfg.SessionJWTSecret == "" {
		logger.Error("SESSION_JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	pool := bootstrap.BuildPGPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}

	metricsHandler, portalMetrics := setupMetrics()
	limiter := httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.RunEviction(ctx, time.Minute, 10*time.Minute)

	routerCfg := buildRouterConfig(cfg, logger, redisClient, pool, portalMetrics)
	routerCfg.MetricsHandler = metricsHandler
	routerCfg.RateLimiter = limiter

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router.New(routerCfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// setupMetrics creates a private registry with runtime collectors and the
// portal metrics.
func setupMetrics() (http.Handler, *metrics.PortalMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), metrics.NewPortalMetrics(reg)
}

// clinicPolicy turns configuration into the cancellation policy.
func clinicPolicy(cfg *appconfig.Config) appointments.Policy {
	policy := appointments.DefaultPolicy()
	if cfg.CancelMinHours > 0 {
		policy.MinHoursToCancel = cfg.CancelMinHours
	}
	if cfg.ClinicUTCOffsetHours != 7 {
		policy.Zone = time.FixedZone(fmt.Sprintf("UTC%+d", cfg.ClinicUTCOffsetHours), cfg.ClinicUTCOffsetHours*60*60)
	}
	return policy
}

func buildRouterConfig(cfg *appconfig.Config, logger *logging.Logger, redisClient *redis.Client, pool *pgxpool.Pool, m *metrics.PortalMetrics) *router.Config {
	client := backend.NewClient(cfg.BackendBaseURL, logger,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithMetrics(m),
	)

	calc := appointments.NewCalculator(clinicPolicy(cfg), time.Now)
	apptService := appointments.NewService(client, calc, bootstrap.BuildAuditRecorder(pool), m, logger)

	resolver := patients.NewResolver(client, redisClient, cfg.PatientIDCacheTTL, m, logger)
	treatmentService := treatments.NewService(client, resolver, m, logger)

	checks := map[string]router.HealthCheck{}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	if pool != nil {
		checks["postgres"] = pool.Ping
	}

	return &router.Config{
		Logger:             logger,
		SessionSecret:      cfg.SessionJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Appointments:       appointments.NewHandler(apptService, logger),
		Treatments:         treatments.NewHandler(treatmentService, logger),
		HealthChecks:       checks,
	}
}
