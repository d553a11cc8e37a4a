// Package models defines the data structures (models) that map to database tables.
// GORM uses these structs to generate SQL queries and map database rows back to Go values.
// The struct field tags (the backtick strings like `gorm:"..."`) tell GORM how to handle
// each field: its column type, constraints, default values, and relationships.
//
// The data model is deliberately small. A fixed group of friends records casual rounds:
//   - Profiles are created the first time someone signs in through the identity provider
//   - Courses are entered by one of the friends and are private unless marked public
//   - Rounds are played at a Course and hold one ordered stroke array per player
//
// A Round copies the course name, hole count and par at creation time (the "snapshot"),
// so round history still renders after a course is edited or deleted.
package models

import (
	"slices"
	"time"

	// uuid provides universally unique identifiers for primary keys.
	"github.com/google/uuid"
	// datatypes gives us JSON-backed column types that work on both Postgres and SQLite.
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- Enums and constants ---

// NoBestScore is the sentinel stored in Stats.BestScore until a complete round is recorded.
const NoBestScore = 999

// MaxStrokesPerHole is the largest per-hole value the scorecard accepts. 0 means "not entered".
const MaxStrokesPerHole = 10

// ValidHoleCounts lists the course sizes the app supports.
var ValidHoleCounts = []int{9, 18, 27, 36}

// ValidHoleCount reports whether n is one of ValidHoleCounts.
func ValidHoleCount(n int) bool {
	return slices.Contains(ValidHoleCounts, n)
}

// CourseKind records how a round refers to its course.
// Older rounds only stored the course name; newer rounds store a full snapshot.
type CourseKind string

const (
	CourseKindSnapshot CourseKind = "snapshot" // CourseID + denormalized name/holes/par
	CourseKindLegacy   CourseKind = "legacy"   // Only a free-text course name
)

// --- Models ---

// Stats is the aggregate record shown on a profile dashboard and used by the leaderboard.
// It is embedded into the profiles table with a "stats_" column prefix.
type Stats struct {
	Wins         int     `gorm:"not null;default:0" json:"wins"`
	Birdies      int     `gorm:"not null;default:0" json:"birdies"`
	BestScore    int     `gorm:"not null;default:999" json:"best_score"` // NoBestScore until a complete round exists
	AverageScore float64 `gorm:"not null;default:0" json:"average_score"`
	RoundsPlayed int     `gorm:"not null;default:0" json:"rounds_played"` // Always >= Wins
}

// NewStats returns zeroed statistics with the best score set to the sentinel.
func NewStats() Stats {
	return Stats{BestScore: NoBestScore}
}

// Profile is a person who can play rounds.
// The primary key is the opaque subject issued by the identity provider, so it is a string
// rather than a UUID we generate.
type Profile struct {
	ID          string    `gorm:"primaryKey"`                  // Identity provider subject (stable)
	DisplayName string    `gorm:"not null"`                    // Never empty
	PhotoURL    *string                                        // Optional avatar from the identity provider
	HomeCourse  *string                                        // Optional free-text home course name
	Handicap    *float64  `gorm:"type:decimal(4,1)"`           // Self-reported; stored, never used in computation
	Stats       Stats     `gorm:"embedded;embeddedPrefix:stats_"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location is where a course is. Lat/Lng of 0 means the coordinates were never set.
type Location struct {
	Address string  `gorm:"not null;default:''" json:"address"`
	Lat     float64 `gorm:"not null;default:0" json:"lat"`
	Lng     float64 `gorm:"not null;default:0" json:"lng"`
}

// HasCoordinates reports whether latitude and longitude were filled in.
func (l Location) HasCoordinates() bool {
	return l.Lat != 0 || l.Lng != 0
}

// Course is a golf course entered by one of the players.
type Course struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey"`
	Name      string                      `gorm:"not null;index"`
	Location  Location                    `gorm:"embedded;embeddedPrefix:location_"`
	Holes     int                         `gorm:"not null"` // One of ValidHoleCounts
	Par       int                         `gorm:"not null"` // Whole-course par; there is no per-hole par
	Rating    float64                     `gorm:"not null;default:0"` // 0 = unset, typically 50-100
	Slope     int                         `gorm:"not null;default:0"` // 0 = unset, typically 55-155
	Amenities datatypes.JSONSlice[string] `gorm:"not null"`            // Set-like, insertion order kept
	Phone     *string
	Website   *string
	OwnerID   string `gorm:"not null;index"` // Profile ID of the creator
	IsPublic  bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BeforeCreate assigns an ID when the caller did not.
func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AddAmenity appends label unless it is empty or already present.
func (c *Course) AddAmenity(label string) bool {
	if label == "" || slices.Contains(c.Amenities, label) {
		return false
	}
	c.Amenities = append(c.Amenities, label)
	return true
}

// Round is one game at one course on one day.
// Scores hold one row per player; Position gives the canonical display order.
type Round struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey"`
	CourseKind  CourseKind   `gorm:"not null;default:'snapshot'"`
	CourseID    *uuid.UUID   `gorm:"type:uuid;index"` // nil for legacy rounds and kept after the course is deleted
	CourseName  string       `gorm:"not null"`
	CourseHoles int          `gorm:"not null;default:0"`
	CoursePar   int          `gorm:"not null;default:0"`
	Date        Date         `gorm:"not null;index"`
	WinnerID    *string      // Profile ID; nil until computed
	CreatedBy   string       `gorm:"not null"`
	CreatedAt   time.Time    // Assigned by the server
	UpdatedAt   time.Time
	Scores      []RoundScore `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE"`
}

// BeforeCreate assigns an ID when the caller did not.
func (r *Round) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoundScore is one player's per-hole stroke array for a round.
type RoundScore struct {
	RoundID  uuid.UUID                `gorm:"type:uuid;primaryKey"`
	PlayerID string                   `gorm:"primaryKey"`
	Position int                      `gorm:"not null"` // 0-based display order within the round
	Strokes  datatypes.JSONSlice[int] `gorm:"not null"` // One entry per hole, 0 = not entered
}

// CourseSnapshot is the course data copied into a round when it is created.
type CourseSnapshot struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Holes int       `json:"holes"`
	Par   int       `json:"par"`
}

// CourseRef is the resolved course of a round: exactly one of LegacyName or Snapshot applies,
// selected by Kind.
type CourseRef struct {
	Kind       CourseKind
	LegacyName string
	Snapshot   *CourseSnapshot
}

// SnapshotOf captures the fields of c a round needs to stay displayable.
func SnapshotOf(c *Course) CourseRef {
	return CourseRef{
		Kind: CourseKindSnapshot,
		Snapshot: &CourseSnapshot{
			ID:    c.ID,
			Name:  c.Name,
			Holes: c.Holes,
			Par:   c.Par,
		},
	}
}

// LegacyCourse builds a reference for rounds that only know the course by name.
func LegacyCourse(name string) CourseRef {
	return CourseRef{Kind: CourseKindLegacy, LegacyName: name}
}

// Name returns the display name regardless of variant.
func (ref CourseRef) Name() string {
	if ref.Kind == CourseKindSnapshot && ref.Snapshot != nil {
		return ref.Snapshot.Name
	}
	return ref.LegacyName
}

// Course resolves the stored columns into a CourseRef using the CourseKind column.
func (r *Round) Course() CourseRef {
	switch r.CourseKind {
	case CourseKindLegacy:
		return LegacyCourse(r.CourseName)
	default:
		snap := &CourseSnapshot{Name: r.CourseName, Holes: r.CourseHoles, Par: r.CoursePar}
		if r.CourseID != nil {
			snap.ID = *r.CourseID
		}
		return CourseRef{Kind: CourseKindSnapshot, Snapshot: snap}
	}
}

// SetCourse writes ref into the round's denormalized columns.
func (r *Round) SetCourse(ref CourseRef) {
	r.CourseKind = ref.Kind
	switch ref.Kind {
	case CourseKindLegacy:
		r.CourseID = nil
		r.CourseName = ref.LegacyName
		r.CourseHoles = 0
		r.CoursePar = 0
	default:
		r.CourseKind = CourseKindSnapshot
		if ref.Snapshot == nil {
			return
		}
		id := ref.Snapshot.ID
		r.CourseID = &id
		r.CourseName = ref.Snapshot.Name
		r.CourseHoles = ref.Snapshot.Holes
		r.CoursePar = ref.Snapshot.Par
	}
}

// HoleCount is the snapshot hole count, or for legacy rounds the longest stroke array.
func (r *Round) HoleCount() int {
	if r.CourseKind != CourseKindLegacy {
		return r.CourseHoles
	}
	n := 0
	for _, s := range r.Scores {
		n = max(n, len(s.Strokes))
	}
	return n
}

// orderedScores returns the score rows sorted by Position without modifying r.
func (r *Round) orderedScores() []RoundScore {
	scores := slices.Clone(r.Scores)
	slices.SortStableFunc(scores, func(a, b RoundScore) int { return a.Position - b.Position })
	return scores
}

// PlayerIDs returns the participating players in display order.
func (r *Round) PlayerIDs() []string {
	scores := r.orderedScores()
	ids := make([]string, 0, len(scores))
	for _, s := range scores {
		ids = append(ids, s.PlayerID)
	}
	return ids
}

// ScoreMap returns player ID -> per-hole strokes.
func (r *Round) ScoreMap() map[string][]int {
	m := make(map[string][]int, len(r.Scores))
	for _, s := range r.Scores {
		m[s.PlayerID] = []int(s.Strokes)
	}
	return m
}

// HasPlayer reports whether playerID participated in the round.
func (r *Round) HasPlayer(playerID string) bool {
	for _, s := range r.Scores {
		if s.PlayerID == playerID {
			return true
		}
	}
	return false
}

// SetScores replaces the score rows using players for ordering.
// Players missing from scores get an empty array; callers validate before persisting.
func (r *Round) SetScores(players []string, scores map[string][]int) {
	rows := make([]RoundScore, 0, len(players))
	for i, p := range players {
		rows = append(rows, RoundScore{
			RoundID:  r.ID,
			PlayerID: p,
			Position: i,
			Strokes:  datatypes.JSONSlice[int](slices.Clone(scores[p])),
		})
	}
	r.Scores = rows
}
