package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"DB_PATH", "LISTEN_ADDR", "LOG_LEVEL", "ENV", "JWT_SECRET",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "CORS_ALLOWED_ORIGINS",
		"CLEANUP_SCHEDULE", "SIDE_EFFECT_TIMEOUT", "ENTITY_ORDER", "SEED_DEV",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "salonhub.sqlite", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "@hourly", cfg.CleanupSchedule)
	assert.Equal(t, 5*time.Second, cfg.SideEffectTimeout)
	assert.InDelta(t, 100, cfg.RateLimitRPS, 0.01)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.IsProduction())

	// The insecure JWT default produces a warning, not an error.
	assert.Equal(t, "dev-secret", cfg.JWTSecret)
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoadFromEnv_AllVarsSet(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_PATH", "/tmp/salon.sqlite")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("JWT_SECRET", "super-secret")
	t.Setenv("RATE_LIMIT_RPS", "25.5")
	t.Setenv("RATE_LIMIT_BURST", "50")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("CLEANUP_SCHEDULE", "@every 10m")
	t.Setenv("SIDE_EFFECT_TIMEOUT", "2s")
	t.Setenv("ENTITY_ORDER", "customer, appointment")
	t.Setenv("SEED_DEV", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/salon.sqlite", cfg.DBPath)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "super-secret", cfg.JWTSecret)
	assert.InDelta(t, 25.5, cfg.RateLimitRPS, 0.01)
	assert.Equal(t, 50, cfg.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "@every 10m", cfg.CleanupSchedule)
	assert.Equal(t, 2*time.Second, cfg.SideEffectTimeout)
	assert.Equal(t, []string{"customer", "appointment"}, cfg.EntityOrder)
	assert.True(t, cfg.SeedDev)
	assert.Empty(t, cfg.Warnings)
}

func TestLoadFromEnv_ProductionHardening(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")

	// Missing JWT secret is fatal in production.
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "real-secret")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	// Wildcard CORS is fatal in production.
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORS")

	// Dev seeding is fatal in production.
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com")
	t.Setenv("SEED_DEV", "true")
	_, err = LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SEED_DEV")
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.in}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.in)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nDOTENV_TEST_A=hello\nDOTENV_TEST_B=\"quoted value\"\n\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("DOTENV_TEST_A", "")
	t.Setenv("DOTENV_TEST_B", "")
	t.Setenv("DOTENV_TEST_C", "already-set")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "hello", os.Getenv("DOTENV_TEST_A"))
	assert.Equal(t, "quoted value", os.Getenv("DOTENV_TEST_B"))
	assert.Equal(t, "already-set", os.Getenv("DOTENV_TEST_C"))

	// A missing file is not an error.
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
