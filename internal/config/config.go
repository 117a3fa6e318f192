package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	LogLevel  string
	LogFormat string

	// Clinic backend API
	BackendBaseURL string
	BackendTimeout time.Duration

	// Session tokens issued by the clinic identity service
	SessionJWTSecret string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	PatientIDCacheTTL time.Duration

	// Cancellation policy
	CancelMinHours       int
	ClinicUTCOffsetHours int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		BackendBaseURL:       strings.TrimRight(getEnv("BACKEND_BASE_URL", "http://localhost:5000"), "/"),
		BackendTimeout:       getEnvAsDuration("BACKEND_TIMEOUT", 15*time.Second),
		SessionJWTSecret:     getEnv("SESSION_JWT_SECRET", ""),
		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
		RateLimitRPS:         getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       getEnvAsInt("RATE_LIMIT_BURST", 20),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		RedisAddr:            getEnv("REDIS_ADDR", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisTLS:             getEnvAsBool("REDIS_TLS", false),
		PatientIDCacheTTL:    getEnvAsDuration("PATIENT_ID_CACHE_TTL", 10*time.Minute),
		CancelMinHours:       getEnvAsInt("CANCEL_MIN_HOURS", 24),
		ClinicUTCOffsetHours: getEnvAsInt("CLINIC_UTC_OFFSET_HOURS", 7),
	}
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated variable, dropping empty entries.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
