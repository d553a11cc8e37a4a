package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/becketmccurdy/buddiesgolf/internal/middleware"
)

// Register mounts every route on app.
//
// Route group pattern: app.Group(prefix, middlewares...) applies Auth to every route under
// /api/v1. Ownership guards are added per route.
func Register(app *fiber.App, d *Deps, verifier *middleware.Verifier) {
	// --- Public routes ---
	app.Get("/health", HealthCheck(d))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics.Registry, promhttp.HandlerOpts{})))

	// --- Authenticated API routes ---
	api := app.Group("/api/v1", middleware.Auth(verifier, d.Store, d.Log))

	api.Get("/me", Me(d))
	api.Get("/leaderboard", Leaderboard(d))

	// Profiles
	api.Get("/profiles", ListProfiles(d))
	api.Get("/profiles/:id", GetProfile(d))
	api.Patch("/profiles/:id", middleware.RequireSelf(), UpdateProfile(d))
	api.Delete("/profiles/:id", middleware.RequireSelf(), DeleteProfile(d))
	api.Get("/profiles/:id/dashboard", Dashboard(d))
	api.Post("/profiles/:id/stats/refresh", RefreshStats(d))
	api.Get("/profiles/:id/rounds", History(d))
	api.Get("/profiles/:id/rounds/export", ExportHistory(d))

	// Courses
	api.Post("/courses", CreateCourse(d))
	api.Get("/courses", ListCourses(d))
	api.Get("/courses/:id", GetCourse(d))
	api.Put("/courses/:id", middleware.RequireCourseOwner(d.Store, d.Log), UpdateCourse(d))
	api.Delete("/courses/:id", middleware.RequireCourseOwner(d.Store, d.Log), DeleteCourse(d))
	api.Get("/places", SearchPlaces(d))

	// Rounds
	api.Post("/rounds", CreateRound(d))
	api.Get("/rounds", ListRounds(d))
	api.Get("/rounds/:id", GetRound(d))
	api.Put("/rounds/:id", middleware.RequireRoundParticipant(d.Store, d.Log), UpdateRound(d))
	api.Delete("/rounds/:id", middleware.RequireRoundParticipant(d.Store, d.Log), DeleteRound(d))
	api.Get("/rounds/:id/live", LiveUpgrade(d), LiveRound(d))
}
