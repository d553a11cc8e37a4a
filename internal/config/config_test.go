package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "DATABASE_URL", "MIGRATIONS_PATH", "IDENTITY_SIGNING_KEY", "GEOCODER_URL", "GEOCODER_RATE_PER_SEC", "LOG_LEVEL", "RECENT_ROUNDS_LIMIT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.GeocoderURL)
	assert.Equal(t, 1.0, cfg.GeocoderRatePerSec)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10, cfg.RecentRoundsLimit)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("GEOCODER_URL", "http://geo.local/")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECENT_ROUNDS_LIMIT", "25")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "http://geo.local", cfg.GeocoderURL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 25, cfg.RecentRoundsLimit)
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "production", GeocoderRatePerSec: 1}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "IDENTITY_SIGNING_KEY")

	dev := &Config{Env: "development", DatabaseURL: "postgres://x", GeocoderRatePerSec: 1}
	assert.NoError(t, dev.Validate())
}
