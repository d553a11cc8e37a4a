package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/places"
)

func locationOf(address string) models.Location {
	return models.Location{Address: address}
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	var body map[string]string
	h.expect(t, http.StatusOK, http.MethodGet, "/health", "", nil, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestAPIRequiresToken(t *testing.T) {
	h := newHarness(t)
	h.expect(t, http.StatusUnauthorized, http.MethodGet, "/api/v1/courses", "", nil, nil)
}

func TestCreateCourse(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "alice")

	var got CourseResponse
	h.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/courses", "alice", CourseRequest{
		Name:      "Pine Valley",
		Location:  models.Location{Address: "East Atlantic Ave", Lat: 39.78, Lng: -74.97},
		Holes:     18,
		Par:       70,
		Amenities: []string{"range", "cart", "range"},
	}, &got)

	assert.Equal(t, "alice", got.OwnerID)
	assert.False(t, got.IsPublic)
	assert.Equal(t, []string{"range", "cart"}, got.Amenities)
	assert.Zero(t, got.Rating)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestCreateCourseValidation(t *testing.T) {
	h := newHarness(t)

	tests := map[string]struct {
		req   CourseRequest
		field string
	}{
		"no name":     {CourseRequest{Location: locationOf("x"), Holes: 9, Par: 36}, "name"},
		"no location": {CourseRequest{Name: "A", Holes: 9, Par: 36}, "location"},
		"bad holes":   {CourseRequest{Name: "A", Location: locationOf("x"), Holes: 12, Par: 36}, "holes"},
		"no par":      {CourseRequest{Name: "A", Location: locationOf("x"), Holes: 9}, "par"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var body map[string]string
			h.expect(t, http.StatusBadRequest, http.MethodPost, "/api/v1/courses", "alice", tc.req, &body)
			assert.Equal(t, tc.field, body["field"])
		})
	}

	var list []CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses?owner=me", "alice", nil, &list)
	assert.Empty(t, list, "a rejected course must not be written")
}

func TestListCourses(t *testing.T) {
	h := newHarness(t)
	h.createCourse(t, "alice", "Pebble Beach", true)
	h.createCourse(t, "alice", "Augusta", true)
	h.createCourse(t, "alice", "Pelican Hill", false)
	h.createCourse(t, "bob", "Pasatiempo", true)

	names := func(cs []CourseResponse) []string {
		out := make([]string, len(cs))
		for i, c := range cs {
			out[i] = c.Name
		}
		return out
	}

	var public []CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses", "carol", nil, &public)
	assert.Equal(t, []string{"Augusta", "Pasatiempo", "Pebble Beach"}, names(public))

	var mine []CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses?owner=me", "alice", nil, &mine)
	assert.Equal(t, []string{"Augusta", "Pebble Beach", "Pelican Hill"}, names(mine))

	var prefixed []CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses?owner=me&search=Pe", "alice", nil, &prefixed)
	assert.Equal(t, []string{"Pebble Beach", "Pelican Hill"}, names(prefixed))

	var capped []CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses?search=P&limit=1", "carol", nil, &capped)
	assert.Equal(t, []string{"Pasatiempo"}, names(capped))

	h.expect(t, http.StatusBadRequest, http.MethodGet, "/api/v1/courses?owner=bob", "alice", nil, nil)
}

func TestCourseOwnership(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Home Links", false)
	path := "/api/v1/courses/" + course.ID

	update := CourseRequest{Name: "Home Links", Location: locationOf("2 Green St"), Holes: 18, Par: 72, IsPublic: true}
	h.expect(t, http.StatusForbidden, http.MethodPut, path, "bob", update, nil)
	h.expect(t, http.StatusForbidden, http.MethodDelete, path, "bob", nil, nil)

	var updated CourseResponse
	h.expect(t, http.StatusOK, http.MethodPut, path, "alice", update, &updated)
	assert.Equal(t, 18, updated.Holes)
	assert.True(t, updated.IsPublic)
	assert.Equal(t, "2 Green St", updated.Location.Address)

	h.expect(t, http.StatusNoContent, http.MethodDelete, path, "alice", nil, nil)
	h.expect(t, http.StatusNotFound, http.MethodGet, path, "alice", nil, nil)
}

func TestGetCourse(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Private Club", false)

	var got CourseResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/courses/"+course.ID, "bob", nil, &got)
	assert.Equal(t, "Private Club", got.Name)

	h.expect(t, http.StatusNotFound, http.MethodGet, "/api/v1/courses/"+uuid.NewString(), "bob", nil, nil)
	h.expect(t, http.StatusBadRequest, http.MethodGet, "/api/v1/courses/not-a-uuid", "bob", nil, nil)
}

func TestSearchPlaces(t *testing.T) {
	h := newHarness(t)

	var got []places.Place
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/places?q=pebble", "alice", nil, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Pebble Beach Golf Links", got[0].Name)
	assert.InDelta(t, 36.5683, got[0].Location.Lat, 1e-9)

	var none []places.Place
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/places?q=nowhere", "alice", nil, &none)
	assert.Empty(t, none)

	h.expect(t, http.StatusBadRequest, http.MethodGet, "/api/v1/places", "alice", nil, nil)
}
