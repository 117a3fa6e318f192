package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/fertilitycare/patient-portal/internal/audit"
	appconfig "github.com/fertilitycare/patient-portal/internal/config"
	"github.com/fertilitycare/patient-portal/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available, patient id cache disabled", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildPGPool connects to Postgres, or returns nil when no DATABASE_URL is set
// or the database is unreachable.
func BuildPGPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres not available, cancellation audit disabled", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// BuildAuditRecorder returns the Postgres audit store, or a no-op recorder
// without a pool.
func BuildAuditRecorder(pool *pgxpool.Pool) audit.Recorder {
	if pool == nil {
		return audit.NopRecorder{}
	}
	return audit.NewStore(pool)
}
