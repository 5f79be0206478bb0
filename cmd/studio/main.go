package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"design-studio/internal/common/config"
	"design-studio/internal/common/middleware"
	"design-studio/internal/editor/models"
	"design-studio/internal/editor/render"
	"design-studio/internal/editor/session"
	"design-studio/internal/studio/handlers"
	"design-studio/internal/studio/repository"
	"design-studio/internal/studio/service"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Studio Service
// ============================================================

func main() {
	cfg := config.Load()
	if os.Getenv("PORT") == "" {
		cfg.Port = "3001"
	}

	db, err := repository.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	repo := repository.New(db)
	if err := repo.Init(context.Background()); err != nil {
		log.Fatalf("init db: %v", err)
	}

	measurer, err := render.NewTextMeasurer()
	if err != nil {
		log.Fatalf("load fonts: %v", err)
	}

	editors := session.NewManager(repo, session.Options{
		Canvas:      models.Size{Width: cfg.CanvasWidth, Height: cfg.CanvasHeight},
		Measurer:    measurer,
		SaveTimeout: time.Duration(cfg.SaveTimeout) * time.Second,
	})

	tokens := service.NewSessionManager()
	accounts := service.NewAccounts(repo, cfg.MaxUsers)
	projects := service.NewProjects(repo)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Studio Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger("STUDIO"))

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		if err := db.PingContext(context.Background()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "db unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ready"})
	})

	// ============================================================
	// Studio Routes
	// ============================================================

	handlers.Routes(app,
		handlers.NewAuthHandler(accounts, projects, tokens, editors),
		handlers.NewProjectHandler(projects, tokens, editors),
		handlers.NewEditorHandler(projects, tokens, editors),
	)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		log.Printf("Shutting down, saving open editors")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Studio Service on %s (env: %s, db: %s)", addr, cfg.Environment, cfg.DBPath)

	if err := app.Listen(addr); err != nil {
		log.Printf("Failed to start server: %v", err)
	}
	editors.CloseAll()
}
