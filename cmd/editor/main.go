package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-editor/internal/common/config"
	"floorplan-editor/internal/common/middleware"
	"floorplan-editor/internal/editor/catalog"
	"floorplan-editor/internal/editor/handlers"
	"floorplan-editor/internal/editor/interaction"
	"floorplan-editor/internal/editor/models"
	"floorplan-editor/internal/editor/repository"
	"floorplan-editor/internal/editor/service"
	"floorplan-editor/internal/editor/session"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
)

// ============================================================
// Canvas Editor Service
// ============================================================

func main() {
	cfg, err := config.LoadWithFile()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if os.Getenv("PORT") == "" {
		cfg.Port = "3003"
	}
	ed := cfg.Editor

	store, lister, closeStore := openStore(ed)
	defer closeStore()

	cat := catalog.Default()
	if ed.CatalogPath != "" {
		if cat, err = catalog.Load(ed.CatalogPath); err != nil {
			log.Fatalf("load catalog: %v", err)
		}
	}

	hub := service.NewHub(func(layoutID string) *session.Session {
		return session.New(session.Config{
			Key:      session.BlobKey(layoutID),
			GridSize: ed.GridSize,
			Canvas: models.CanvasConfig{
				Width:           ed.CanvasWidth,
				Height:          ed.CanvasHeight,
				GridSize:        ed.GridSize,
				BackgroundColor: ed.Background,
			},
			Interaction: interaction.Config{
				ClickThreshold: ed.ClickThreshold,
				ZoomMin:        ed.ZoomMin,
				ZoomMax:        ed.ZoomMax,
				ZoomStep:       ed.ZoomStep,
			},
		}, store, cat)
	}, service.WithIdleTimeout(ed.IdleTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.RunAutosave(ctx, ed.Autosave)

	editorHandler := handlers.NewEditorHandler(hub, cat, service.NewExportStorage(ed.ExportDir), lister)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		AppName:      "Canvas Editor Service",
	})

	// ============================================================
	// Global Middleware
	// ============================================================

	app.Use(recover.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// ============================================================
	// Health Check Routes
	// ============================================================

	app.Get("/health/live", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ready", "layouts": len(hub.Layouts())})
	})

	// ============================================================
	// Editor Routes
	// ============================================================

	editorHandler.Register(app)

	// ============================================================
	// Server Start
	// ============================================================

	go func() {
		<-ctx.Done()
		log.Printf("Shutting down Canvas Editor Service")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("Starting Canvas Editor Service on %s (env: %s, grid: %d)", addr, cfg.Environment, ed.GridSize)

	if err := app.Listen(addr); err != nil {
		log.Printf("Failed to start server: %v", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close(flushCtx)
}

// openStore выбирает хранилище: ":memory:" держит раскладки в памяти, иначе sqlite.
func openStore(ed config.EditorConfig) (session.Store, handlers.LayoutLister, func()) {
	if ed.DBPath == ":memory:" {
		log.Printf("[STORE] using in-memory layouts")
		store := repository.NewMemory()
		return store, store, func() {}
	}

	db, err := repository.OpenSQLite(ed.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	repo := repository.New(db)
	migrations := ed.MigrationsPath
	if _, err := os.Stat(migrations); err != nil {
		log.Printf("[STORE] migration %s not found, using embedded schema", migrations)
		migrations = ""
	}
	if err := repo.Init(context.Background(), migrations); err != nil {
		log.Fatalf("init db: %v", err)
	}
	log.Printf("[STORE] sqlite layouts at %s", ed.DBPath)
	return repo, repo, func() { db.Close() }
}
