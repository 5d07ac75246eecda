package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "DATABASE_DSN", "REDIS_ADDR", "CHECKOUT_CLEAR_DELAY", "LOG_LEVEL", "TRACING_ENABLED"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.Database.DSN)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Empty(t, cfg.Cache.RedisAddr)
	assert.Equal(t, time.Second, cfg.Checkout.ClearCartDelay)
	assert.Equal(t, 24*time.Hour, cfg.Checkout.IdempotencyTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.False(t, cfg.Telemetry.TracingEnabled)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost/shop")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("CHECKOUT_CLEAR_DELAY", "0s")
	t.Setenv("TOKEN_TTL", "15m")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACING_ENABLED", "true")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres://u:p@localhost/shop", cfg.Database.DSN)
	assert.False(t, cfg.Database.RunMigrations)
	assert.Equal(t, time.Duration(0), cfg.Checkout.ClearCartDelay)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.True(t, cfg.Telemetry.TracingEnabled)
}

func TestFromEnv_MalformedFallsBack(t *testing.T) {
	t.Setenv("CHECKOUT_CLEAR_DELAY", "soon")
	t.Setenv("RUN_MIGRATIONS", "maybe")
	t.Setenv("LOG_LEVEL", "loud")

	cfg := FromEnv()

	assert.Equal(t, time.Second, cfg.Checkout.ClearCartDelay)
	assert.True(t, cfg.Database.RunMigrations)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}
