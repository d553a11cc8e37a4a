package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// ProfileUpdate lists the fields a player can edit on their own profile. Nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string
	HomeCourse  *string
	Handicap    *float64
}

// CreateProfile inserts p with zeroed statistics.
func (s *Store) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		return invalid("id", "is required")
	}
	p.DisplayName = strings.TrimSpace(p.DisplayName)
	if p.DisplayName == "" {
		return invalid("display_name", "is required")
	}
	p.Stats = models.NewStats()
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile returns the profile with id, or nil if there is none.
func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", id, err)
	}
	return &p, nil
}

// EnsureProfile returns the profile for id, creating it on first sign-in.
// created is true when this call wrote the row. Concurrent first requests for the same id
// all succeed: the losers of the insert race read back the winner's row.
func (s *Store) EnsureProfile(ctx context.Context, id, displayName string, photoURL *string) (p *models.Profile, created bool, err error) {
	p, err = s.GetProfile(ctx, id)
	if err != nil || p != nil {
		return p, false, err
	}
	if id == "" {
		return nil, false, invalid("id", "is required")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = "Golfer"
	}
	p = &models.Profile{ID: id, DisplayName: displayName, PhotoURL: photoURL, Stats: models.NewStats()}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(p)
	if res.Error != nil {
		return nil, false, fmt.Errorf("create profile %s: %w", id, res.Error)
	}
	if res.RowsAffected == 1 {
		return p, true, nil
	}

	p, err = s.GetProfile(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if p == nil {
		return nil, false, fmt.Errorf("create profile %s: row vanished after conflict", id)
	}
	return p, false, nil
}

// ListProfiles returns every profile ordered by display name, then ID.
// The leaderboard relies on this order to break ties.
func (s *Store) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).Order("display_name ASC").Order("id ASC").Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// UpdateProfile applies u to the profile with id and returns the stored result.
func (s *Store) UpdateProfile(ctx context.Context, id string, u ProfileUpdate) (*models.Profile, error) {
	if u.DisplayName != nil && strings.TrimSpace(*u.DisplayName) == "" {
		return nil, invalid("display_name", "cannot be empty")
	}

	p, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	if u.DisplayName != nil {
		p.DisplayName = strings.TrimSpace(*u.DisplayName)
	}
	if u.HomeCourse != nil {
		p.HomeCourse = u.HomeCourse
		if *u.HomeCourse == "" {
			p.HomeCourse = nil
		}
	}
	if u.Handicap != nil {
		p.Handicap = u.Handicap
	}

	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, fmt.Errorf("update profile %s: %w", id, err)
	}
	return p, nil
}

// UpdateStats overwrites the statistics of the profile with id.
func (s *Store) UpdateStats(ctx context.Context, id string, stats models.Stats) error {
	switch {
	case stats.Wins < 0, stats.Birdies < 0, stats.RoundsPlayed < 0, stats.AverageScore < 0:
		return invalid("stats", "cannot be negative")
	case stats.RoundsPlayed < stats.Wins:
		return invalid("stats", "rounds played (%d) cannot be less than wins (%d)", stats.RoundsPlayed, stats.Wins)
	}

	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(map[string]any{
		"stats_wins":          stats.Wins,
		"stats_birdies":       stats.Birdies,
		"stats_best_score":    stats.BestScore,
		"stats_average_score": stats.AverageScore,
		"stats_rounds_played": stats.RoundsPlayed,
		"updated_at":          s.now(),
	})
	if res.Error != nil {
		return fmt.Errorf("update stats for %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// DeleteProfile removes the profile with id. Rounds that reference it are untouched.
func (s *Store) DeleteProfile(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Profile{}).Error; err != nil {
		return fmt.Errorf("delete profile %s: %w", id, err)
	}
	return nil
}
