package handlers

import (
	"time"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/scoring"
)

// We send dedicated response structs rather than the GORM models so the JSON shape is
// controlled here and computed fields (totals, labels, win rate) sit next to stored ones.

// ProfileResponse is a player's public profile.
type ProfileResponse struct {
	ID          string       `json:"id"`
	DisplayName string       `json:"display_name"`
	PhotoURL    *string      `json:"photo_url"`
	HomeCourse  *string      `json:"home_course"`
	Handicap    *float64     `json:"handicap"`
	Stats       models.Stats `json:"stats"`
	CreatedAt   string       `json:"created_at"`
}

func toProfileResponse(p *models.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		HomeCourse:  p.HomeCourse,
		Handicap:    p.Handicap,
		Stats:       p.Stats,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CourseResponse is a course as shown in pickers and on the course page.
type CourseResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Location  models.Location `json:"location"`
	Holes     int             `json:"holes"`
	Par       int             `json:"par"`
	Rating    float64         `json:"rating"`
	Slope     int             `json:"slope"`
	Amenities []string        `json:"amenities"`
	Phone     *string         `json:"phone"`
	Website   *string         `json:"website"`
	OwnerID   string          `json:"owner_id"`
	IsPublic  bool            `json:"is_public"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

func toCourseResponse(c *models.Course) CourseResponse {
	amenities := []string(c.Amenities)
	if amenities == nil {
		amenities = []string{}
	}
	return CourseResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Location:  c.Location,
		Holes:     c.Holes,
		Par:       c.Par,
		Rating:    c.Rating,
		Slope:     c.Slope,
		Amenities: amenities,
		Phone:     c.Phone,
		Website:   c.Website,
		OwnerID:   c.OwnerID,
		IsPublic:  c.IsPublic,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// RoundCourse is the course of a round. Legacy rounds only carry a name.
type RoundCourse struct {
	Kind  models.CourseKind `json:"kind"`
	ID    *string           `json:"id,omitempty"`
	Name  string            `json:"name"`
	Holes int               `json:"holes,omitempty"`
	Par   int               `json:"par,omitempty"`
}

// RoundResponse is a round with its scorecard and the values derived from it.
type RoundResponse struct {
	ID        string                     `json:"id"`
	Course    RoundCourse                `json:"course"`
	Date      models.Date                `json:"date"`
	Players   []string                   `json:"players"`
	Scores    map[string][]int           `json:"scores"`
	Totals    []scoring.PlayerTotal      `json:"totals"`
	Labels    map[string][]scoring.Label `json:"labels"`
	WinnerID  *string                    `json:"winner_id"`
	CreatedBy string                     `json:"created_by"`
	CreatedAt string                     `json:"created_at"`
}

func toRoundResponse(r *models.Round) RoundResponse {
	ref := r.Course()
	course := RoundCourse{Kind: ref.Kind, Name: ref.Name()}
	if ref.Snapshot != nil {
		course.Holes = ref.Snapshot.Holes
		course.Par = ref.Snapshot.Par
		if r.CourseID != nil {
			id := r.CourseID.String()
			course.ID = &id
		}
	}

	players := r.PlayerIDs()
	scores := r.ScoreMap()
	labels := make(map[string][]scoring.Label, len(players))
	for _, p := range players {
		labels[p] = scoring.HoleLabels(scores[p])
	}

	return RoundResponse{
		ID:        r.ID.String(),
		Course:    course,
		Date:      r.Date,
		Players:   players,
		Scores:    scores,
		Totals:    scoring.Totals(players, scores),
		Labels:    labels,
		WinnerID:  r.WinnerID,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toRoundResponses(rounds []models.Round) []RoundResponse {
	out := make([]RoundResponse, 0, len(rounds))
	for i := range rounds {
		out = append(out, toRoundResponse(&rounds[i]))
	}
	return out
}
