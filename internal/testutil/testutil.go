// Package testutil holds helpers shared by handler and middleware tests: an in-memory
// database with the schema applied, signed ID tokens and JSON request builders.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/becketmccurdy/buddiesgolf/internal/config"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
)

// SigningKey is the HS256 key used by TestConfig and Token.
const SigningKey = "test-signing-key"

// TestConfig returns a configuration suitable for handler tests.
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0",
		Env:                "test",
		SigningKey:         SigningKey,
		GeocoderRatePerSec: 100,
		CORSOrigins:        "*",
		RecentRoundsLimit:  10,
	}
}

// OpenDB opens a private in-memory SQLite database with every model migrated.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DSN:        ":memory:",
		DriverName: "sqlite",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// Each connection to ":memory:" is its own database, so keep exactly one.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	if err := db.AutoMigrate(store.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewStore returns a store over OpenDB.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(OpenDB(t))
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Token signs an ID token for subject with SigningKey, valid for an hour.
func Token(t *testing.T, subject, name string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  subject,
		"name": name,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(SigningKey))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

// Request builds a request with an optional JSON body and bearer token.
func Request(t *testing.T, method, target, token string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// DecodeJSON reads resp's body into v and closes it.
func DecodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
