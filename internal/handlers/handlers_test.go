package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/becketmccurdy/buddiesgolf/internal/dates"
	"github.com/becketmccurdy/buddiesgolf/internal/metrics"
	"github.com/becketmccurdy/buddiesgolf/internal/middleware"
	"github.com/becketmccurdy/buddiesgolf/internal/places"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
	"github.com/becketmccurdy/buddiesgolf/internal/testutil"
	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

// testNow is a Wednesday; "yesterday" resolves to 2024-06-11.
var testNow = time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)

var displayNames = map[string]string{
	"alice": "Alice",
	"bob":   "Bob",
	"carol": "Carol",
	"dave":  "Dave",
}

type harness struct {
	app   *fiber.App
	store *store.Store
	hub   *websocket.Hub
	deps  *Deps
}

const geocoderBody = `[{"name":"Pebble Beach Golf Links","display_name":"Pebble Beach Golf Links, Pebble Beach, CA","lat":"36.5683","lon":"-121.9496"}]`

func newHarness(t *testing.T) *harness {
	t.Helper()

	geo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("q") == "nowhere" {
			_, _ = w.Write([]byte(`[]`))
			return
		}
		_, _ = w.Write([]byte(geocoderBody))
	}))
	t.Cleanup(geo.Close)

	cfg := testutil.TestConfig()
	log := testutil.Logger()
	m := metrics.New()
	hub := websocket.NewHub(m.LiveWatchers, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	d := &Deps{
		Config:  cfg,
		Store:   testutil.NewStore(t),
		Hub:     hub,
		Places:  places.NewClient(geo.URL, "test", 100, m.GeocoderCalls),
		Dates:   dates.NewParser(),
		Metrics: m,
		Log:     log,
		Now:     func() time.Time { return testNow },
	}

	app := fiber.New()
	app.Use(middleware.Metrics(m))
	Register(app, d, middleware.NewVerifier(cfg))
	return &harness{app: app, store: d.Store, hub: hub, deps: d}
}

// do sends a request as user ("" for anonymous).
func (h *harness) do(t *testing.T, method, target, user string, body any) *http.Response {
	t.Helper()
	token := ""
	if user != "" {
		token = testutil.Token(t, user, displayNames[user])
	}
	resp, err := h.app.Test(testutil.Request(t, method, target, token, body), -1)
	require.NoError(t, err)
	return resp
}

// expect sends a request, checks the status and decodes the body into out (if non-nil).
func (h *harness) expect(t *testing.T, status int, method, target, user string, body, out any) {
	t.Helper()
	resp := h.do(t, method, target, user, body)
	if out == nil {
		resp.Body.Close()
		require.Equal(t, status, resp.StatusCode, "%s %s", method, target)
		return
	}
	require.Equal(t, status, resp.StatusCode, "%s %s", method, target)
	testutil.DecodeJSON(t, resp, out)
}

// signIn makes a first request as each user so their profiles exist.
func (h *harness) signIn(t *testing.T, users ...string) {
	t.Helper()
	for _, u := range users {
		h.expect(t, http.StatusOK, http.MethodGet, "/api/v1/me", u, nil, nil)
	}
}

func (h *harness) createCourse(t *testing.T, owner, name string, public bool) CourseResponse {
	t.Helper()
	var out CourseResponse
	h.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/courses", owner, CourseRequest{
		Name:     name,
		Location: locationOf("1 Fairway Dr"),
		Holes:    9,
		Par:      36,
		IsPublic: public,
	}, &out)
	return out
}

func (h *harness) createRound(t *testing.T, user, courseID, date string, players []string, scores map[string][]int) RoundResponse {
	t.Helper()
	var out RoundResponse
	h.expect(t, http.StatusCreated, http.MethodPost, "/api/v1/rounds", user, CreateRoundRequest{
		CourseID: courseID,
		Date:     date,
		Players:  players,
		Scores:   scores,
	}, &out)
	return out
}

func holes(v ...int) []int {
	if len(v) == 9 {
		return v
	}
	out := make([]int, 9)
	for i := range out {
		out[i] = v[0]
	}
	return out
}
