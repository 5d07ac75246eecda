// Package config loads the runtime settings of the storefront binaries from
// the environment, after reading an optional .env file.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string
	LogLevel slog.Level

	Database  Database
	Cache     Cache
	SagaLog   SagaLog
	AMQP      AMQP
	Auth      Auth
	Checkout  Checkout
	Telemetry Telemetry
}

type Database struct {
	// DSN empty selects the in-memory gateway.
	DSN           string
	RunMigrations bool
}

type Cache struct {
	// RedisAddr empty selects the in-memory cache.
	RedisAddr string
}

type SagaLog struct {
	Path string
}

type AMQP struct {
	URL string
}

type Auth struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type Checkout struct {
	ClearCartDelay time.Duration
	IdempotencyTTL time.Duration
}

type Telemetry struct {
	ServiceName    string
	TracingEnabled bool
}

// Load reads .env from the working directory if present and builds a Config.
// Malformed numeric or duration values fall back to their defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not read .env file", "error", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),
		LogLevel: parseLevel(getenv("LOG_LEVEL", "info")),
		Database: Database{
			DSN:           getenv("DATABASE_DSN", ""),
			RunMigrations: parseBool(getenv("RUN_MIGRATIONS", "true"), true),
		},
		Cache: Cache{
			RedisAddr: getenv("REDIS_ADDR", ""),
		},
		SagaLog: SagaLog{
			Path: getenv("SAGA_LOG_PATH", ""),
		},
		AMQP: AMQP{
			URL: getenv("AMQP_URL", ""),
		},
		Auth: Auth{
			JWTSecret: getenv("JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  parseDuration(getenv("TOKEN_TTL", "24h"), 24*time.Hour),
		},
		Checkout: Checkout{
			ClearCartDelay: parseDuration(getenv("CHECKOUT_CLEAR_DELAY", "1s"), time.Second),
			IdempotencyTTL: parseDuration(getenv("IDEMPOTENCY_TTL", "24h"), 24*time.Hour),
		},
		Telemetry: Telemetry{
			ServiceName:    getenv("OTEL_SERVICE_NAME", "storefront-api"),
			TracingEnabled: parseBool(getenv("TRACING_ENABLED", "false"), false),
		},
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

func parseBool(v string, def bool) bool {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func parseLevel(v string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
