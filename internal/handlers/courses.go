package handlers

// courses.go handles /api/v1/courses and the /api/v1/places lookup that course forms use to
// fill in coordinates.
//
// Courses are private to their creator unless marked public. Listing without ?owner=me shows
// public courses only; fetching by ID is open to every player because rounds link to courses.

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/places"
	"github.com/becketmccurdy/buddiesgolf/internal/session"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
)

// CourseRequest is the JSON body of POST and PUT /api/v1/courses. PUT replaces every field.
type CourseRequest struct {
	Name      string          `json:"name"`
	Location  models.Location `json:"location"`
	Holes     int             `json:"holes"`
	Par       int             `json:"par"`
	Rating    float64         `json:"rating"`
	Slope     int             `json:"slope"`
	Amenities []string        `json:"amenities"`
	Phone     *string         `json:"phone"`
	Website   *string         `json:"website"`
	IsPublic  bool            `json:"is_public"`
}

func (r CourseRequest) input() store.CourseInput {
	return store.CourseInput{
		Name:      r.Name,
		Location:  r.Location,
		Holes:     r.Holes,
		Par:       r.Par,
		Rating:    r.Rating,
		Slope:     r.Slope,
		Amenities: r.Amenities,
		Phone:     r.Phone,
		Website:   r.Website,
		IsPublic:  r.IsPublic,
	}
}

// CreateCourse handles POST /api/v1/courses. The caller becomes the owner.
func CreateCourse(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CourseRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}

		course, err := d.Store.CreateCourse(c.UserContext(), session.From(c).UserID(), req.input())
		if err != nil {
			return d.storeError(c, err, "create course")
		}
		d.Metrics.CoursesWritten.WithLabelValues("create").Inc()
		return c.Status(fiber.StatusCreated).JSON(toCourseResponse(course))
	}
}

// ListCourses handles GET /api/v1/courses.
//
// Query parameters:
//   - owner=me  only the caller's courses (public and private); default is public courses
//   - search    name prefix, case-sensitive
//   - limit     maximum number of results
func ListCourses(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		opts := store.CourseListOptions{
			Search: c.Query("search"),
			Limit:  queryLimit(c, 0),
		}
		switch owner := c.Query("owner"); owner {
		case "":
		case "me":
			opts.OwnerID = session.From(c).UserID()
		default:
			return errorJSON(c, fiber.StatusBadRequest, "owner must be \"me\" or omitted")
		}

		courses, err := d.Store.ListCourses(c.UserContext(), opts)
		if err != nil {
			return d.storeError(c, err, "list courses")
		}
		out := make([]CourseResponse, 0, len(courses))
		for i := range courses {
			out = append(out, toCourseResponse(&courses[i]))
		}
		return c.JSON(out)
	}
}

// GetCourse handles GET /api/v1/courses/:id.
func GetCourse(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, "invalid course id")
		}
		course, err := d.Store.GetCourse(c.UserContext(), id)
		if err != nil {
			return d.storeError(c, err, "load course")
		}
		if course == nil {
			return errorJSON(c, fiber.StatusNotFound, "course not found")
		}
		return c.JSON(toCourseResponse(course))
	}
}

// UpdateCourse handles PUT /api/v1/courses/:id. Routed behind RequireCourseOwner, which has
// already checked the ID and ownership.
func UpdateCourse(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := parseID(c)
		var req CourseRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}

		course, err := d.Store.UpdateCourse(c.UserContext(), id, req.input())
		if err != nil {
			return d.storeError(c, err, "update course")
		}
		d.Metrics.CoursesWritten.WithLabelValues("update").Inc()
		return c.JSON(toCourseResponse(course))
	}
}

// DeleteCourse handles DELETE /api/v1/courses/:id. Rounds played there keep their snapshot.
func DeleteCourse(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, _ := parseID(c)
		if err := d.Store.DeleteCourse(c.UserContext(), id); err != nil {
			return d.storeError(c, err, "delete course")
		}
		d.Metrics.CoursesWritten.WithLabelValues("delete").Inc()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SearchPlaces handles GET /api/v1/places?q=...&limit=...
// No match is an empty list, not an error.
func SearchPlaces(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := d.Places.Search(c.UserContext(), c.Query("q"), queryLimit(c, 0))
		switch {
		case errors.Is(err, places.ErrEmptyQuery):
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, places.ErrNoResults):
			return c.JSON([]places.Place{})
		case err != nil:
			d.Log.Warn("place search failed", "query", c.Query("q"), "error", err)
			return errorJSON(c, fiber.StatusBadGateway, "place search unavailable")
		}
		return c.JSON(results)
	}
}
