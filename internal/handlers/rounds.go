package handlers

// rounds.go handles /api/v1/rounds.
//
// A round is written in one piece: the course snapshot, the player order, every stroke array
// and the winner are stored together. After any write the statistics of the players involved
// are recomputed and live watchers are notified.

import (
	"errors"
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/becketmccurdy/buddiesgolf/internal/dates"
	"github.com/becketmccurdy/buddiesgolf/internal/middleware"
	"github.com/becketmccurdy/buddiesgolf/internal/session"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

// CreateRoundRequest is the JSON body of POST /api/v1/rounds.
type CreateRoundRequest struct {
	CourseID string           `json:"course_id"`
	Date     string           `json:"date"`    // "YYYY-MM-DD" or a phrase such as "yesterday"
	Players  []string         `json:"players"` // Display order
	Scores   map[string][]int `json:"scores"`  // Player ID -> strokes per hole, 0 = not entered
}

// UpdateRoundRequest is the JSON body of PUT /api/v1/rounds/:id. The course cannot change.
type UpdateRoundRequest struct {
	Date    string           `json:"date"`
	Players []string         `json:"players"`
	Scores  map[string][]int `json:"scores"`
}

// dateError explains a rejected round date.
func dateError(c *fiber.Ctx, err error) error {
	if errors.Is(err, dates.ErrEmpty) {
		return fieldError(c, "date", "date is required")
	}
	return fieldError(c, "date", "date not recognized")
}

// CreateRound handles POST /api/v1/rounds.
func CreateRound(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateRoundRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		courseID, err := uuid.Parse(req.CourseID)
		if err != nil {
			return fieldError(c, "course_id", "course_id must be a UUID")
		}
		day, err := d.Dates.Parse(req.Date, d.now())
		if err != nil {
			return dateError(c, err)
		}

		ctx := c.UserContext()
		round, err := d.Store.CreateRound(ctx, session.From(c).UserID(), store.RoundInput{
			CourseID: courseID,
			Date:     day,
			Players:  req.Players,
			Scores:   req.Scores,
		})
		if err != nil {
			return d.storeError(c, err, "create round")
		}
		d.Metrics.RoundsWritten.WithLabelValues("create").Inc()

		d.refreshStats(ctx, round.PlayerIDs()...)
		out := toRoundResponse(round)
		d.publish(websocket.RoundCreated, round.ID, out)
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// ListRounds handles GET /api/v1/rounds?limit=N: the newest rounds across the group.
func ListRounds(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rounds, err := d.Store.ListRecentRounds(c.UserContext(), queryLimit(c, d.Config.RecentRoundsLimit))
		if err != nil {
			return d.storeError(c, err, "list rounds")
		}
		return c.JSON(toRoundResponses(rounds))
	}
}

// GetRound handles GET /api/v1/rounds/:id.
func GetRound(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, fiber.StatusBadRequest, "invalid round id")
		}
		round, err := d.Store.GetRound(c.UserContext(), id)
		if err != nil {
			return d.storeError(c, err, "load round")
		}
		if round == nil {
			return errorJSON(c, fiber.StatusNotFound, "round not found")
		}
		return c.JSON(toRoundResponse(round))
	}
}

// UpdateRound handles PUT /api/v1/rounds/:id. Routed behind RequireRoundParticipant.
// Players dropped from the round have their statistics recomputed too.
func UpdateRound(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		existing := middleware.LoadedRound(c)
		var req UpdateRoundRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		day, err := d.Dates.Parse(req.Date, d.now())
		if err != nil {
			return dateError(c, err)
		}

		ctx := c.UserContext()
		round, previous, err := d.Store.UpdateRound(ctx, existing.ID, store.RoundUpdate{
			Date:    day,
			Players: req.Players,
			Scores:  req.Scores,
		})
		if err != nil {
			return d.storeError(c, err, "update round")
		}
		d.Metrics.RoundsWritten.WithLabelValues("update").Inc()

		affected := previous
		for _, p := range round.PlayerIDs() {
			if !slices.Contains(affected, p) {
				affected = append(affected, p)
			}
		}
		d.refreshStats(ctx, affected...)

		out := toRoundResponse(round)
		d.publish(websocket.RoundUpdated, round.ID, out)
		return c.JSON(out)
	}
}

// DeleteRound handles DELETE /api/v1/rounds/:id. Routed behind RequireRoundParticipant.
func DeleteRound(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round := middleware.LoadedRound(c)
		ctx := c.UserContext()
		if err := d.Store.DeleteRound(ctx, round.ID); err != nil {
			return d.storeError(c, err, "delete round")
		}
		d.Metrics.RoundsWritten.WithLabelValues("delete").Inc()

		d.refreshStats(ctx, round.PlayerIDs()...)
		d.publish(websocket.RoundDeleted, round.ID, nil)
		return c.SendStatus(fiber.StatusNoContent)
	}
}
