// Package config handles loading and validating runtime configuration for the Buddies Golf API.
// Configuration values (like the database URL and API port) are read from environment variables
// rather than being hardcoded, so the same binary runs in development and production with only
// the environment changing.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	// godotenv reads a .env file and loads its key=value pairs into the process environment.
	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values for the application.
type Config struct {
	Port           string // The TCP port the HTTP server will listen on (e.g., "8080")
	Env            string // "development", "staging", or "production"
	DatabaseURL    string // PostgreSQL connection string
	MigrationsPath string // golang-migrate source URL, e.g. "file://migrations"

	// Identity provider settings. ID tokens are HS256-signed with SigningKey.
	// An empty SigningKey is only accepted in development, where tokens are parsed unverified.
	SigningKey string
	Issuer     string

	GeocoderURL        string  // Base URL of a Nominatim-compatible place search service
	GeocoderUserAgent  string  // Sent on every geocoder request
	GeocoderRatePerSec float64 // Outbound request budget for the geocoder

	CORSOrigins       string     // Comma-separated origins for the CORS middleware
	LogLevel          slog.Level // Minimum level for the structured logger
	RecentRoundsLimit int        // Default cap for GET /rounds
}

// Load reads configuration from environment variables and returns a populated Config.
// A .env file in the working directory is loaded first if present; a missing file is fine.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:               getenv("PORT", "8080"),
		Env:                getenv("ENV", "development"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		MigrationsPath:     getenv("MIGRATIONS_PATH", "file://migrations"),
		SigningKey:         os.Getenv("IDENTITY_SIGNING_KEY"),
		Issuer:             os.Getenv("IDENTITY_ISSUER"),
		GeocoderURL:        strings.TrimRight(getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderUserAgent:  getenv("GEOCODER_USER_AGENT", "buddiesgolf/1.0"),
		GeocoderRatePerSec: getenvFloat("GEOCODER_RATE_PER_SEC", 1),
		CORSOrigins:        getenv("CORS_ORIGINS", "*"),
		LogLevel:           parseLevel(os.Getenv("LOG_LEVEL")),
		RecentRoundsLimit:  getenvInt("RECENT_ROUNDS_LIMIT", 10),
	}
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.SigningKey == "" && !c.IsDevelopment() {
		errs = append(errs, fmt.Errorf("IDENTITY_SIGNING_KEY is required when ENV=%s", c.Env))
	}
	if c.GeocoderRatePerSec <= 0 {
		errs = append(errs, errors.New("GEOCODER_RATE_PER_SEC must be positive"))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getenvFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
