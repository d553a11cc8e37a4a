package middleware

// ownership.go: resource-level access control.
// There are no global roles: everyone in the group is a player. What a player may change is
// decided by the record itself:
//   - a profile can only be edited by its owner
//   - a course can only be edited or deleted by the player who created it
//   - a round can be edited or deleted by any player who took part in it
//
// These guards must run AFTER Auth, which attaches the session.

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/session"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
)

// Locals keys under which the guards leave the loaded record for the handler.
const (
	LocalCourse = "course"
	LocalRound  = "round"
)

func forbidden(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": msg})
}

// RequireSelf allows the request only when the :id route parameter is the caller's own ID.
func RequireSelf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := session.From(c).UserID()
		if userID == "" || c.Params("id") != userID {
			return forbidden(c, "you can only change your own profile")
		}
		return c.Next()
	}
}

// RequireCourseOwner loads the course named by :id and allows only its owner through.
func RequireCourseOwner(st *store.Store, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid course id"})
		}

		course, err := st.GetCourse(c.UserContext(), id)
		if err != nil {
			log.Error("load course failed", "course_id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load course"})
		}
		if course == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "course not found"})
		}
		if course.OwnerID != session.From(c).UserID() {
			return forbidden(c, "only the course owner can change it")
		}

		c.Locals(LocalCourse, course)
		return c.Next()
	}
}

// RequireRoundParticipant loads the round named by :id and allows only its players through.
func RequireRoundParticipant(st *store.Store, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid round id"})
		}

		round, err := st.GetRound(c.UserContext(), id)
		if err != nil {
			log.Error("load round failed", "round_id", id, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load round"})
		}
		if round == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "round not found"})
		}
		if !round.HasPlayer(session.From(c).UserID()) {
			return forbidden(c, "only players in this round can change it")
		}

		c.Locals(LocalRound, round)
		return c.Next()
	}
}

// LoadedRound returns the round a guard attached to the request, if any.
func LoadedRound(c *fiber.Ctx) *models.Round {
	r, _ := c.Locals(LocalRound).(*models.Round)
	return r
}
