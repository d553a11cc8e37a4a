package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/scoring"
	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

func (h *harness) profile(t *testing.T, id string) ProfileResponse {
	t.Helper()
	var p ProfileResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/profiles/"+id, "alice", nil, &p)
	return p
}

func TestRoundLifecycle(t *testing.T) {
	h := newHarness(t)
	h.signIn(t, "alice", "bob")
	course := h.createCourse(t, "alice", "Pine Valley", false)

	// Both total 36; alice is listed first so she takes the tie.
	scores := map[string][]int{
		"alice": holes(4),
		"bob":   holes(3, 5, 4, 4, 4, 4, 4, 4, 4),
	}
	round := h.createRound(t, "alice", course.ID, "yesterday", []string{"alice", "bob"}, scores)

	assert.Equal(t, "2024-06-11", round.Date.String())
	assert.Equal(t, models.CourseKindSnapshot, round.Course.Kind)
	assert.Equal(t, "Pine Valley", round.Course.Name)
	assert.Equal(t, 36, round.Course.Par)
	require.NotNil(t, round.WinnerID)
	assert.Equal(t, "alice", *round.WinnerID)
	assert.Equal(t, []string{"alice", "bob"}, round.Players)
	assert.Equal(t, []scoring.PlayerTotal{
		{PlayerID: "alice", Total: 36, Complete: true},
		{PlayerID: "bob", Total: 36, Complete: true},
	}, round.Totals)
	assert.Equal(t, scoring.LabelBirdie, round.Labels["bob"][0])
	assert.Equal(t, scoring.LabelBogey, round.Labels["bob"][1])
	assert.Equal(t, "alice", round.CreatedBy)

	alice := h.profile(t, "alice")
	assert.Equal(t, models.Stats{Wins: 1, RoundsPlayed: 1, BestScore: 36, AverageScore: 36}, alice.Stats)
	bob := h.profile(t, "bob")
	assert.Equal(t, models.Stats{Birdies: 1, RoundsPlayed: 1, BestScore: 36, AverageScore: 36}, bob.Stats)

	// Watch the round, then let bob correct it by listing himself first.
	watcher := websocket.NewClient(round.ID)
	require.True(t, h.hub.Register(watcher))
	require.Eventually(t, func() bool { return h.hub.Watchers(round.ID) == 1 }, time.Second, 5*time.Millisecond)

	path := "/api/v1/rounds/" + round.ID
	update := UpdateRoundRequest{Date: "2024-06-10", Players: []string{"bob", "alice"}, Scores: scores}
	h.expect(t, http.StatusForbidden, http.MethodPut, path, "carol", update, nil)

	var updated RoundResponse
	h.expect(t, http.StatusOK, http.MethodPut, path, "bob", update, &updated)
	assert.Equal(t, "bob", *updated.WinnerID)
	assert.Equal(t, "2024-06-10", updated.Date.String())
	assert.Equal(t, "Pine Valley", updated.Course.Name)

	select {
	case data := <-watcher.Send:
		var ev websocket.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, websocket.RoundUpdated, ev.Type)
		assert.Equal(t, round.ID, ev.RoundID)
	case <-time.After(2 * time.Second):
		t.Fatal("no live event after update")
	}

	assert.Equal(t, 0, h.profile(t, "alice").Stats.Wins)
	assert.Equal(t, 1, h.profile(t, "bob").Stats.Wins)

	var fetched RoundResponse
	h.expect(t, http.StatusOK, http.MethodGet, path, "carol", nil, &fetched)
	assert.Equal(t, []string{"bob", "alice"}, fetched.Players)

	h.expect(t, http.StatusForbidden, http.MethodDelete, path, "carol", nil, nil)
	h.expect(t, http.StatusNoContent, http.MethodDelete, path, "alice", nil, nil)
	h.expect(t, http.StatusNotFound, http.MethodGet, path, "alice", nil, nil)

	bob = h.profile(t, "bob")
	assert.Equal(t, models.NewStats(), bob.Stats)
}

func TestRoundSurvivesCourseDeletion(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Soon Gone", false)
	round := h.createRound(t, "alice", course.ID, "2024-06-01", []string{"alice"}, map[string][]int{"alice": holes(5)})

	h.expect(t, http.StatusNoContent, http.MethodDelete, "/api/v1/courses/"+course.ID, "alice", nil, nil)

	var got RoundResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/rounds/"+round.ID, "alice", nil, &got)
	assert.Equal(t, "Soon Gone", got.Course.Name)
	assert.Equal(t, 9, got.Course.Holes)
}

func TestCreateRoundValidation(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Pine Valley", false)

	tests := map[string]struct {
		req   CreateRoundRequest
		field string
	}{
		"bad course id": {CreateRoundRequest{CourseID: "nope", Date: "2024-06-01", Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(4)}}, "course_id"},
		"unknown course": {CreateRoundRequest{CourseID: uuid.NewString(), Date: "2024-06-01", Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(4)}}, "course_id"},
		"no date":        {CreateRoundRequest{CourseID: course.ID, Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(4)}}, "date"},
		"garbage date":   {CreateRoundRequest{CourseID: course.ID, Date: "someday maybe", Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(4)}}, "date"},
		"no players":     {CreateRoundRequest{CourseID: course.ID, Date: "2024-06-01"}, "players"},
		"short card":     {CreateRoundRequest{CourseID: course.ID, Date: "2024-06-01", Players: []string{"alice"}, Scores: map[string][]int{"alice": {4, 4, 4}}}, "scores"},
		"extra player":   {CreateRoundRequest{CourseID: course.ID, Date: "2024-06-01", Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(4), "bob": holes(4)}}, "scores"},
		"too many":       {CreateRoundRequest{CourseID: course.ID, Date: "2024-06-01", Players: []string{"alice"}, Scores: map[string][]int{"alice": holes(11)}}, "scores"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var body map[string]string
			h.expect(t, http.StatusBadRequest, http.MethodPost, "/api/v1/rounds", "alice", tc.req, &body)
			assert.Equal(t, tc.field, body["field"])
		})
	}

	var recent []RoundResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/rounds", "alice", nil, &recent)
	assert.Empty(t, recent)
}

func TestListRecentRounds(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Pine Valley", false)
	for _, d := range []string{"2024-05-01", "2024-06-01", "2024-05-15"} {
		h.createRound(t, "alice", course.ID, d, []string{"alice"}, map[string][]int{"alice": holes(4)})
	}

	var recent []RoundResponse
	h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/rounds?limit=2", "bob", nil, &recent)
	require.Len(t, recent, 2)
	assert.Equal(t, "2024-06-01", recent[0].Date.String())
	assert.Equal(t, "2024-05-15", recent[1].Date.String())
}

func TestLiveRequiresUpgrade(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t, "alice", "Pine Valley", false)
	round := h.createRound(t, "alice", course.ID, "2024-06-01", []string{"alice"}, map[string][]int{"alice": holes(4)})

	h.expect(t, http.StatusUpgradeRequired, http.MethodGet, "/api/v1/rounds/"+round.ID+"/live", "alice", nil, nil)
}
