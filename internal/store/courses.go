package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
)

// namePrefix matches names that start with the bound term. It compares the leading
// characters with "=" rather than a sort range, so the result does not depend on the
// database collation: "Pine" never matches "pine hills".
const namePrefix = "substr(name, 1, ?) = ?"

// CourseInput carries the editable fields of a course.
type CourseInput struct {
	Name      string
	Location  models.Location
	Holes     int
	Par       int
	Rating    float64
	Slope     int
	Amenities []string
	Phone     *string
	Website   *string
	IsPublic  bool
}

// CourseListOptions controls ListCourses.
type CourseListOptions struct {
	OwnerID string // When set, only this owner's courses; otherwise only public courses
	Search  string // Case-sensitive name prefix
	Limit   int    // 0 means no cap
}

func validateCourse(in *CourseInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Location.Address = strings.TrimSpace(in.Location.Address)
	switch {
	case in.Name == "":
		return invalid("name", "is required")
	case in.Location.Address == "":
		return invalid("location", "is required")
	case in.Holes == 0:
		return invalid("holes", "is required")
	case !models.ValidHoleCount(in.Holes):
		return invalid("holes", "must be one of %v", models.ValidHoleCounts)
	case in.Par <= 0:
		return invalid("par", "must be a positive number")
	case in.Rating < 0:
		return invalid("rating", "cannot be negative")
	case in.Slope < 0:
		return invalid("slope", "cannot be negative")
	}
	return nil
}

// applyCourse copies in onto c, de-duplicating amenities in first-seen order.
func applyCourse(c *models.Course, in CourseInput) {
	c.Name = in.Name
	c.Location = in.Location
	c.Holes = in.Holes
	c.Par = in.Par
	c.Rating = in.Rating
	c.Slope = in.Slope
	c.Phone = emptyToNil(in.Phone)
	c.Website = emptyToNil(in.Website)
	c.IsPublic = in.IsPublic

	c.Amenities = datatypes.JSONSlice[string]{}
	for _, a := range in.Amenities {
		c.AddAmenity(strings.TrimSpace(a))
	}
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// CreateCourse validates in and inserts a course owned by ownerID.
// Courses are private unless in.IsPublic is set; rating and slope default to 0 (unset).
func (s *Store) CreateCourse(ctx context.Context, ownerID string, in CourseInput) (*models.Course, error) {
	if err := validateCourse(&in); err != nil {
		return nil, err
	}
	if ownerID == "" {
		return nil, invalid("owner", "is required")
	}

	now := s.now()
	c := &models.Course{OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}
	applyCourse(c, in)

	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("create course %q: %w", in.Name, err)
	}
	return c, nil
}

// GetCourse returns the course with id, or nil if there is none.
func (s *Store) GetCourse(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch course %s: %w", id, err)
	}
	return &c, nil
}

// ListCourses returns courses ordered by name.
func (s *Store) ListCourses(ctx context.Context, opts CourseListOptions) ([]models.Course, error) {
	query := s.db.WithContext(ctx).Model(&models.Course{})

	if opts.OwnerID != "" {
		query = query.Where("owner_id = ?", opts.OwnerID)
	} else {
		query = query.Where("is_public = ?", true)
	}

	if opts.Search != "" {
		query = query.Where(namePrefix, utf8.RuneCountInString(opts.Search), opts.Search)
	}

	query = query.Order("name ASC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	courses := []models.Course{}
	if err := query.Find(&courses).Error; err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// UpdateCourse replaces the editable fields of the course with id and refreshes UpdatedAt.
// Rounds keep the snapshot they were created with.
func (s *Store) UpdateCourse(ctx context.Context, id uuid.UUID, in CourseInput) (*models.Course, error) {
	if err := validateCourse(&in); err != nil {
		return nil, err
	}

	c, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	applyCourse(c, in)
	c.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, fmt.Errorf("update course %s: %w", id, err)
	}
	return c, nil
}

// DeleteCourse removes the course with id. Rounds played there are not touched; they carry
// their own copy of the course name, holes and par.
func (s *Store) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Course{}).Error; err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}
