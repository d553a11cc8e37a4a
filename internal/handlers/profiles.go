package handlers

// profiles.go handles /api/v1/me, /api/v1/profiles and /api/v1/leaderboard.
// Profiles are created by the Auth middleware on first sign-in, so there is no POST route.

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/export"
	"github.com/becketmccurdy/buddiesgolf/internal/models"
	"github.com/becketmccurdy/buddiesgolf/internal/scoring"
	"github.com/becketmccurdy/buddiesgolf/internal/session"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
)

// UpdateProfileRequest is the JSON body of PATCH /api/v1/profiles/:id. Omitted fields are
// left unchanged; an empty home_course clears it.
type UpdateProfileRequest struct {
	DisplayName *string  `json:"display_name"`
	HomeCourse  *string  `json:"home_course"`
	Handicap    *float64 `json:"handicap"`
}

// DashboardResponse is the profile page: stored stats plus derived rates and recent rounds.
type DashboardResponse struct {
	Profile         ProfileResponse `json:"profile"`
	WinRate         float64         `json:"win_rate"`
	BirdiesPerRound float64         `json:"birdies_per_round"`
	HasBestScore    bool            `json:"has_best_score"`
	RecentRounds    []RoundResponse `json:"recent_rounds"`
}

// HistoryResponse is a player's filtered round history with the values the filter
// dropdowns offer, taken from the unfiltered history.
type HistoryResponse struct {
	Rounds  []RoundResponse `json:"rounds"`
	Courses []string        `json:"courses"`
	Dates   []models.Date   `json:"dates"`
}

// StandingResponse is one leaderboard row.
type StandingResponse struct {
	Rank    int             `json:"rank"`
	Profile ProfileResponse `json:"profile"`
	WinRate float64         `json:"win_rate"`
}

// Me handles GET /api/v1/me: the signed-in principal and their profile.
func Me(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := session.From(c).Principal()
		if err != nil {
			return errorJSON(c, fiber.StatusUnauthorized, err.Error())
		}
		p, err := d.Store.GetProfile(c.UserContext(), principal.UserID)
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		if p == nil {
			return errorJSON(c, fiber.StatusNotFound, "profile not found")
		}
		return c.JSON(fiber.Map{
			"principal": principal,
			"profile":   toProfileResponse(p),
		})
	}
}

// ListProfiles handles GET /api/v1/profiles, used by player pickers.
func ListProfiles(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profiles, err := d.Store.ListProfiles(c.UserContext())
		if err != nil {
			return d.storeError(c, err, "list profiles")
		}
		out := make([]ProfileResponse, 0, len(profiles))
		for i := range profiles {
			out = append(out, toProfileResponse(&profiles[i]))
		}
		return c.JSON(out)
	}
}

// GetProfile handles GET /api/v1/profiles/:id.
func GetProfile(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := d.Store.GetProfile(c.UserContext(), c.Params("id"))
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		if p == nil {
			return errorJSON(c, fiber.StatusNotFound, "profile not found")
		}
		return c.JSON(toProfileResponse(p))
	}
}

// UpdateProfile handles PATCH /api/v1/profiles/:id. Routed behind RequireSelf.
func UpdateProfile(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateProfileRequest
		if err := c.BodyParser(&req); err != nil {
			return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
		}
		p, err := d.Store.UpdateProfile(c.UserContext(), c.Params("id"), store.ProfileUpdate{
			DisplayName: req.DisplayName,
			HomeCourse:  req.HomeCourse,
			Handicap:    req.Handicap,
		})
		if err != nil {
			return d.storeError(c, err, "update profile")
		}
		return c.JSON(toProfileResponse(p))
	}
}

// DeleteProfile handles DELETE /api/v1/profiles/:id. Routed behind RequireSelf.
// The next authenticated request recreates an empty profile.
func DeleteProfile(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := d.Store.DeleteProfile(c.UserContext(), c.Params("id")); err != nil {
			return d.storeError(c, err, "delete profile")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// Dashboard handles GET /api/v1/profiles/:id/dashboard.
func Dashboard(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		p, err := d.Store.GetProfile(ctx, c.Params("id"))
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		if p == nil {
			return errorJSON(c, fiber.StatusNotFound, "profile not found")
		}

		rounds, err := d.Store.ListPlayerRounds(ctx, p.ID)
		if err != nil {
			return d.storeError(c, err, "load rounds")
		}
		if limit := d.Config.RecentRoundsLimit; limit > 0 && len(rounds) > limit {
			rounds = rounds[:limit]
		}

		return c.JSON(DashboardResponse{
			Profile:         toProfileResponse(p),
			WinRate:         scoring.WinRate(p.Stats),
			BirdiesPerRound: scoring.BirdiesPerRound(p.Stats),
			HasBestScore:    scoring.HasBestScore(p.Stats),
			RecentRounds:    toRoundResponses(rounds),
		})
	}
}

// RefreshStats handles POST /api/v1/profiles/:id/stats/refresh. Statistics are derived
// entirely from round history, so any player may trigger a recompute for anyone.
func RefreshStats(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		id := c.Params("id")
		p, err := d.Store.GetProfile(ctx, id)
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		if p == nil {
			return errorJSON(c, fiber.StatusNotFound, "profile not found")
		}
		if err := d.Store.RefreshStats(ctx, id); err != nil {
			return d.storeError(c, err, "refresh stats")
		}
		p, err = d.Store.GetProfile(ctx, id)
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		return c.JSON(toProfileResponse(p))
	}
}

// historyFilter reads ?course=, ?player= and ?date= (YYYY-MM-DD).
func historyFilter(c *fiber.Ctx) (scoring.HistoryFilter, error) {
	f := scoring.HistoryFilter{
		Course: c.Query("course"),
		Player: c.Query("player"),
	}
	if raw := c.Query("date"); raw != "" {
		day, err := models.ParseDate(raw)
		if err != nil {
			return f, errors.New("date must be YYYY-MM-DD")
		}
		f.Date = &day
	}
	return f, nil
}

// loadHistory fetches the player's rounds and every profile for name resolution, then
// applies f.
func (d *Deps) loadHistory(c *fiber.Ctx, playerID string, f scoring.HistoryFilter) (all, filtered []models.Round, profiles []models.Profile, err error) {
	all, err = d.Store.ListPlayerRounds(c.UserContext(), playerID)
	if err != nil {
		return nil, nil, nil, err
	}
	profiles, err = d.Store.ListProfiles(c.UserContext())
	if err != nil {
		return nil, nil, nil, err
	}
	return all, scoring.FilterRounds(all, profiles, f), profiles, nil
}

// History handles GET /api/v1/profiles/:id/rounds.
func History(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := historyFilter(c)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		all, filtered, _, err := d.loadHistory(c, c.Params("id"), f)
		if err != nil {
			return d.storeError(c, err, "load round history")
		}
		return c.JSON(HistoryResponse{
			Rounds:  toRoundResponses(filtered),
			Courses: scoring.UniqueCourseNames(all),
			Dates:   scoring.UniqueDates(all),
		})
	}
}

// ExportHistory handles GET /api/v1/profiles/:id/rounds/export. It accepts the same filters
// as History and responds with an .xlsx attachment.
func ExportHistory(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		f, err := historyFilter(c)
		if err != nil {
			return errorJSON(c, fiber.StatusBadRequest, err.Error())
		}
		p, err := d.Store.GetProfile(c.UserContext(), c.Params("id"))
		if err != nil {
			return d.storeError(c, err, "load profile")
		}
		if p == nil {
			return errorJSON(c, fiber.StatusNotFound, "profile not found")
		}

		_, filtered, profiles, err := d.loadHistory(c, p.ID, f)
		if err != nil {
			return d.storeError(c, err, "load round history")
		}
		names := make(map[string]string, len(profiles))
		for _, pr := range profiles {
			names[pr.ID] = pr.DisplayName
		}

		var buf bytes.Buffer
		if err := export.RoundHistory(&buf, p, filtered, names); err != nil {
			d.Log.Error("export failed", "player_id", p.ID, "error", err)
			return errorJSON(c, fiber.StatusInternalServerError, "failed to export rounds")
		}

		c.Attachment(fmt.Sprintf("rounds-%s-%s.xlsx", p.ID, d.now().UTC().Format(models.DateLayout)))
		c.Set(fiber.HeaderContentType, export.ContentType)
		return c.Send(buf.Bytes())
	}
}

// Leaderboard handles GET /api/v1/leaderboard: the top five players by wins.
func Leaderboard(d *Deps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		profiles, err := d.Store.ListProfiles(c.UserContext())
		if err != nil {
			return d.storeError(c, err, "load leaderboard")
		}
		standings := scoring.Leaderboard(profiles, scoring.LeaderboardSize)
		out := make([]StandingResponse, 0, len(standings))
		for i := range standings {
			s := &standings[i]
			out = append(out, StandingResponse{
				Rank:    s.Rank,
				Profile: toProfileResponse(&s.Profile),
				WinRate: scoring.WinRate(s.Profile.Stats),
			})
		}
		return c.JSON(out)
	}
}
