package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// newTestStore opens a private in-memory SQLite database with the schema applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DSN:        ":memory:",
		DriverName: "sqlite",
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each connection to ":memory:" is its own database, so keep exactly one.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return New(db)
}

// withClock pins the store clock.
func withClock(s *Store, t time.Time) {
	s.now = func() time.Time { return t }
}

func mustProfile(t *testing.T, s *Store, id, name string) *models.Profile {
	t.Helper()
	p := &models.Profile{ID: id, DisplayName: name}
	require.NoError(t, s.CreateProfile(context.Background(), p))
	return p
}

func courseInput(name string) CourseInput {
	return CourseInput{
		Name:     name,
		Location: models.Location{Address: "1 Fairway Dr", Lat: 36.56, Lng: -121.95},
		Holes:    9,
		Par:      36,
	}
}

func mustCourse(t *testing.T, s *Store, owner, name string) *models.Course {
	t.Helper()
	c, err := s.CreateCourse(context.Background(), owner, courseInput(name))
	require.NoError(t, err)
	return c
}

func date(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func nineHoles(v int) []int {
	out := make([]int, 9)
	for i := range out {
		out[i] = v
	}
	return out
}
