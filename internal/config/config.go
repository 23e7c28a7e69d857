package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting, loaded from the environment with an
// optional .env file for local development.
type Config struct {
	AppName string
	AppEnv  string

	ServerPort     int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	RedisURL       string
	CacheKeyPrefix string
	CacheListTTL   time.Duration

	JWTSecret    string
	JWTAccessTTL time.Duration

	CORSOrigins      []string
	RateLimitRPM     int
	AuthRateLimitRPM int

	DefaultLocale string
	AuditBuffer   int
	LogLevel      string
}

// Load reads configuration from the environment. A missing .env file is
// fine; missing required values are not.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "project-management-tool"),
		AppEnv:  getEnv("APP_ENV", "development"),

		ServerPort:     getEnvInt("SERVER_PORT", 8080),
		ReadTimeout:    getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:   getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:    getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  int32(getEnvInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getEnvInt("DB_MIN_CONNS", 2)),

		RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheListTTL: getEnvDuration("CACHE_LIST_TTL", 300*time.Second),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", time.Hour),

		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", "*")),
		RateLimitRPM:     getEnvInt("RATE_LIMIT_RPM", 120),
		AuthRateLimitRPM: getEnvInt("AUTH_RATE_LIMIT_RPM", 10),

		DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		AuditBuffer:   getEnvInt("AUDIT_BUFFER", 256),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
	cfg.CacheKeyPrefix = getEnv("CACHE_KEY_PREFIX", cfg.AppName+":"+cfg.AppEnv)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AppEnv != "development" && cfg.AppEnv != "production" && cfg.AppEnv != "test" {
		return nil, fmt.Errorf("APP_ENV must be development, production or test, got %q", cfg.AppEnv)
	}

	return cfg, nil
}

// Development reports whether error details may be exposed in responses.
func (c *Config) Development() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
