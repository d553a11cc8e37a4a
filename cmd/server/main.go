// cmd/server/main.go
// This is the entry point for the Buddies Golf API server.
//
// The binary has two commands:
//
//	server serve          run the HTTP API (default when no command is given)
//	server migrate up     apply pending SQL migrations
//	server migrate down   roll back migrations (--steps N, 0 = all)
//	server migrate version
//
// The cmd/ folder holds executable binaries; internal/ holds the packages they are built from.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v2"

	"github.com/becketmccurdy/buddiesgolf/internal/config"
	"github.com/becketmccurdy/buddiesgolf/internal/database"
	"github.com/becketmccurdy/buddiesgolf/internal/dates"
	"github.com/becketmccurdy/buddiesgolf/internal/handlers"
	"github.com/becketmccurdy/buddiesgolf/internal/metrics"
	"github.com/becketmccurdy/buddiesgolf/internal/middleware"
	"github.com/becketmccurdy/buddiesgolf/internal/places"
	"github.com/becketmccurdy/buddiesgolf/internal/store"
	"github.com/becketmccurdy/buddiesgolf/internal/websocket"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)
	slog.SetDefault(log)

	app := &cli.App{
		Name:  "buddiesgolf",
		Usage: "golf round tracker API",
		Commands: []*cli.Command{
			serveCommand(cfg, log),
			migrateCommand(cfg, log),
		},
		Action: func(c *cli.Context) error {
			return serve(c.Context, cfg, log)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("exiting", "error", err)
		os.Exit(1)
	}
}

// newLogger writes JSON in deployed environments and readable text in development.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsDevelopment() {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func serveCommand(cfg *config.Config, log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run pending migrations and start the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "skip-migrations", Usage: "start without applying migrations"},
		},
		Action: func(c *cli.Context) error {
			if c.Bool("skip-migrations") {
				cfg.MigrationsPath = ""
			}
			return serve(c.Context, cfg, log)
		},
	}
}

func migrateCommand(cfg *config.Config, log *slog.Logger) *cli.Command {
	requireDB := func(*cli.Context) error {
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
		return nil
	}
	return &cli.Command{
		Name:   "migrate",
		Usage:  "database migrations",
		Before: requireDB,
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply all pending migrations",
				Action: func(*cli.Context) error {
					if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
						return err
					}
					log.Info("migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "roll back migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back, 0 for all"},
				},
				Action: func(c *cli.Context) error {
					if err := database.MigrateDown(cfg.DatabaseURL, cfg.MigrationsPath, c.Int("steps")); err != nil {
						return err
					}
					log.Info("migrations rolled back", "steps", c.Int("steps"))
					return nil
				},
			},
			{
				Name:  "version",
				Usage: "print the applied migration version",
				Action: func(*cli.Context) error {
					v, dirty, err := database.Version(cfg.DatabaseURL, cfg.MigrationsPath)
					if err != nil {
						return err
					}
					fmt.Printf("version %d (dirty=%t)\n", v, dirty)
					return nil
				},
			},
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.SigningKey == "" {
		log.Warn("IDENTITY_SIGNING_KEY not set: ID tokens are parsed without verification")
	}

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		return err
	}

	// Running pending migrations on startup keeps the schema in sync with the binary.
	if cfg.MigrationsPath != "" {
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	hub := websocket.NewHub(m.LiveWatchers, log)
	go hub.Run(ctx)

	deps := &handlers.Deps{
		Config:  cfg,
		Store:   store.New(db),
		Hub:     hub,
		Places:  places.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderRatePerSec, m.GeocoderCalls),
		Dates:   dates.NewParser(),
		Metrics: m,
		Log:     log,
	}

	app := fiber.New(fiber.Config{
		AppName: "Buddies Golf API",
	})

	// --- Global middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.ReplaceAll(cfg.CORSOrigins, " ", ""),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.Metrics(m))

	handlers.Register(app, deps, middleware.NewVerifier(cfg))

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
