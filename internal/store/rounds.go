package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/scoring"
)

// RoundInput is everything needed to record a finished round.
type RoundInput struct {
	CourseID uuid.UUID
	Date     models.Date
	Players  []string         // Display order
	Scores   map[string][]int // Player ID -> per-hole strokes
}

// RoundUpdate replaces the date, players and scores of an existing round.
// The course snapshot is never changed after creation.
type RoundUpdate struct {
	Date    models.Date
	Players []string
	Scores  map[string][]int
}

// validateScores checks that players and scores describe the same set of people and that
// every stroke array has one entry per hole. holes <= 0 skips the length check against the
// course but still requires arrays of equal length (legacy rounds).
func validateScores(players []string, scores map[string][]int, holes int) error {
	if len(players) == 0 {
		return invalid("players", "must include at least one player")
	}

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if strings.TrimSpace(p) == "" {
			return invalid("players", "cannot contain an empty id")
		}
		if seen[p] {
			return invalid("players", "lists %s more than once", p)
		}
		seen[p] = true
		if _, ok := scores[p]; !ok {
			return invalid("scores", "missing for player %s", p)
		}
	}
	for p := range scores {
		if !seen[p] {
			return invalid("scores", "given for %s who is not in the round", p)
		}
	}

	want := holes
	if want <= 0 {
		want = len(scores[players[0]])
		if want == 0 {
			return invalid("scores", "must cover at least one hole")
		}
	}
	for _, p := range players {
		strokes := scores[p]
		if len(strokes) != want {
			return invalid("scores", "for %s has %d holes, expected %d", p, len(strokes), want)
		}
		for i, s := range strokes {
			if s < 0 || s > models.MaxStrokesPerHole {
				return invalid("scores", "for %s hole %d must be between 0 and %d", p, i+1, models.MaxStrokesPerHole)
			}
		}
	}
	return nil
}

// courseReady checks the fields a round needs from its course.
func courseReady(c *models.Course) error {
	switch {
	case c.Holes == 0 || !models.ValidHoleCount(c.Holes):
		return invalid("course", "has no valid hole count")
	case c.Par <= 0:
		return invalid("course", "has no par")
	case strings.TrimSpace(c.Location.Address) == "":
		return invalid("course", "has no location")
	}
	return nil
}

func setWinner(r *models.Round, players []string, scores map[string][]int) error {
	winner, err := scoring.Winner(players, scores)
	if err != nil {
		return err
	}
	r.WinnerID = &winner
	return nil
}

// CreateRound validates in, snapshots the course and writes the round with all of its scores
// in one transaction. The winner is computed here.
func (s *Store) CreateRound(ctx context.Context, createdBy string, in RoundInput) (*models.Round, error) {
	if in.CourseID == uuid.Nil {
		return nil, invalid("course_id", "is required")
	}
	if in.Date.IsZero() {
		return nil, invalid("date", "is required")
	}
	if len(in.Players) == 0 {
		return nil, invalid("players", "must include at least one player")
	}

	course, err := s.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, invalid("course_id", "does not exist")
	}
	if err := courseReady(course); err != nil {
		return nil, err
	}
	if err := validateScores(in.Players, in.Scores, course.Holes); err != nil {
		return nil, err
	}

	r := &models.Round{ID: uuid.New(), Date: in.Date, CreatedBy: createdBy}
	r.SetCourse(models.SnapshotOf(course))
	r.SetScores(in.Players, in.Scores)
	if err := setWinner(r, in.Players, in.Scores); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(r).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create round: %w", err)
	}
	return r, nil
}

// GetRound returns the round with id and its scores, or nil if there is none.
func (s *Store) GetRound(ctx context.Context, id uuid.UUID) (*models.Round, error) {
	var r models.Round
	err := s.db.WithContext(ctx).Preload("Scores", scoresInOrder).Where("id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch round %s: %w", id, err)
	}
	return &r, nil
}

// ListRecentRounds returns the newest rounds by date, at most limit of them.
func (s *Store) ListRecentRounds(ctx context.Context, limit int) ([]models.Round, error) {
	query := s.db.WithContext(ctx).
		Preload("Scores", scoresInOrder).
		Order("date DESC").
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	rounds := []models.Round{}
	if err := query.Find(&rounds).Error; err != nil {
		return nil, fmt.Errorf("list recent rounds: %w", err)
	}
	return rounds, nil
}

// ListPlayerRounds returns every round playerID took part in, newest first.
func (s *Store) ListPlayerRounds(ctx context.Context, playerID string) ([]models.Round, error) {
	db := s.db.WithContext(ctx)
	membership := db.Model(&models.RoundScore{}).Select("round_id").Where("player_id = ?", playerID)

	rounds := []models.Round{}
	err := db.Preload("Scores", scoresInOrder).
		Where("id IN (?)", membership).
		Order("date DESC").
		Order("created_at DESC").
		Find(&rounds).Error
	if err != nil {
		return nil, fmt.Errorf("list rounds for %s: %w", playerID, err)
	}
	return rounds, nil
}

// UpdateRound replaces the date, players and scores of the round with id and recomputes the
// winner. The replaced players are returned so callers can refresh their statistics.
func (s *Store) UpdateRound(ctx context.Context, id uuid.UUID, u RoundUpdate) (r *models.Round, previous []string, err error) {
	if u.Date.IsZero() {
		return nil, nil, invalid("date", "is required")
	}

	r, err = s.GetRound(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if r == nil {
		return nil, nil, ErrNotFound
	}
	holes := r.CourseHoles
	if r.CourseKind == models.CourseKindLegacy {
		// Legacy rounds have no recorded hole count; only equal lengths are required.
		holes = 0
	}
	if err := validateScores(u.Players, u.Scores, holes); err != nil {
		return nil, nil, err
	}

	previous = r.PlayerIDs()
	r.Date = u.Date
	r.SetScores(u.Players, u.Scores)
	if err := setWinner(r, u.Players, u.Scores); err != nil {
		return nil, nil, err
	}
	r.UpdatedAt = s.now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("round_id = ?", id).Delete(&models.RoundScore{}).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(r).Error; err != nil {
			return err
		}
		return tx.Create(&r.Scores).Error
	})
	if err != nil {
		return nil, nil, fmt.Errorf("update round %s: %w", id, err)
	}
	return r, previous, nil
}

// DeleteRound removes the round with id and its scores.
func (s *Store) DeleteRound(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("round_id = ?", id).Delete(&models.RoundScore{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Round{}).Error
	})
	if err != nil {
		return fmt.Errorf("delete round %s: %w", id, err)
	}
	return nil
}

// RefreshStats recomputes and stores the statistics of each player from their round history.
// A failure for one player does not stop the others; all failures are returned joined.
func (s *Store) RefreshStats(ctx context.Context, playerIDs ...string) error {
	var errs []error
	for _, id := range playerIDs {
		rounds, err := s.ListPlayerRounds(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		err = s.UpdateStats(ctx, id, scoring.ComputeStats(id, rounds))
		if errors.Is(err, ErrNoRowsAffected) {
			// Rounds may list players whose profile was deleted.
			continue
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
