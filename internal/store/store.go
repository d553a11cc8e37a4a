// Package store is the data-access layer. Each method is one independent unit of work
// against the database: no batching, caching or retries. Methods either return their result
// or the wrapped database error.
//
// Input shaping (defaults, timestamps, amenity de-duplication, score validation) happens
// here so handlers only translate HTTP to and from these calls.
package store

import (
	"time"

	"gorm.io/gorm"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// Store wraps a GORM handle.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// New returns a Store backed by db.
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// AllModels lists every model with a table, in creation order. Production schemas come from
// the SQL migrations; tests hand this list to AutoMigrate.
func AllModels() []any {
	return []any{&models.Profile{}, &models.Course{}, &models.Round{}, &models.RoundScore{}}
}

// scoresInOrder preloads round scores sorted by their display position.
func scoresInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
