// Package handlers contains the HTTP route handlers for the Buddies Golf API.
//
// Each exported function follows the "handler factory" pattern: it takes the collaborators it
// needs (bundled in *Deps) and returns a fiber.Handler. Nothing is global, which lets tests
// build the full router over an in-memory database.
//
// Error responses always have the shape {"error": "..."}; validation failures add "field".
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/becketmccurdy/buddiesgolf/internal/config"
	"github.com/becketmccurdy/buddiesgolf/internal/dates"
	"github.com/becketmccurdy/buddiesgolf/internal/metrics"
	"github.com/becketmccurdy/buddiesgolf/internal/places"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

// Deps are the collaborators shared by every handler.
type Deps struct {
	Config  *config.Config
	Store   *store.Store
	Hub     *websocket.Hub
	Places  *places.Client
	Dates   *dates.Parser
	Metrics *metrics.Metrics
	Log     *slog.Logger
	Now     func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func errorJSON(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

func fieldError(c *fiber.Ctx, field, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "field": field})
}

// storeError maps a store error to a response. Anything that is not a validation failure or
// a missing record is logged and hidden behind a 500.
func (d *Deps) storeError(c *fiber.Ctx, err error, action string) error {
	var verr *store.ValidationError
	switch {
	case errors.As(err, &verr):
		return fieldError(c, verr.Field, verr.Error())
	case errors.Is(err, store.ErrNotFound):
		return errorJSON(c, fiber.StatusNotFound, "not found")
	default:
		d.Log.Error(action+" failed", "path", c.Path(), "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}

// parseID reads the :id route parameter as a UUID.
func parseID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// refreshStats recomputes statistics after a round write. The write itself already
// succeeded, so a failure here is only logged; POST /profiles/:id/stats/refresh repairs it.
func (d *Deps) refreshStats(ctx context.Context, players ...string) {
	if err := d.Store.RefreshStats(ctx, players...); err != nil {
		d.Log.Warn("stats refresh failed", "players", players, "error", err)
	}
}

// publish notifies live watchers of a round.
func (d *Deps) publish(kind string, roundID uuid.UUID, round any) {
	if d.Hub == nil {
		return
	}
	ev := websocket.Event{Type: kind, RoundID: roundID.String(), Round: round}
	if err := d.Hub.Publish(ev); err != nil {
		d.Log.Warn("live publish failed", "round_id", roundID, "error", err)
	}
}

// queryLimit reads a positive ?limit, falling back to def.
func queryLimit(c *fiber.Ctx, def int) int {
	if n := c.QueryInt("limit", def); n > 0 {
		return n
	}
	return def
}
