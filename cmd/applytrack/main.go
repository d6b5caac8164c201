package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/mveron/applytrack/internal/config"
	"github.com/mveron/applytrack/internal/handlers"
	authmw "github.com/mveron/applytrack/internal/middleware"
	"github.com/mveron/applytrack/internal/services"
	"github.com/mveron/applytrack/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	client := store.NewClient(cfg.GitHub)
	tracker := services.NewTracker(client)

	// Load once at startup. A failure here is not fatal: the store may
	// be briefly unreachable, and any request can hit /reload.
	loadCtx, cancel := context.WithTimeout(context.Background(), cfg.GitHub.Timeout+5*time.Second)
	if err := tracker.Load(loadCtx); err != nil {
		log.Printf("Initial load failed (reload to retry): %v", err)
	}
	cancel()

	applicationHandler := handlers.NewApplicationHandler(tracker)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]any{"status": "ok", "loaded": tracker.Loaded()})
	})

	protected := api.Group("")
	protected.Use(authmw.APIKeyAuth(cfg.APIKey))

	protected.Get("/applications", applicationHandler.List)
	protected.Post("/applications", applicationHandler.Create)
	protected.Patch("/applications/:id", applicationHandler.Update)
	protected.Post("/applications/:id/reject", applicationHandler.Reject)
	protected.Post("/applications/:id/delete", applicationHandler.ArmDelete)
	protected.Post("/applications/:id/delete/confirm", applicationHandler.ConfirmDelete)
	protected.Post("/applications/:id/delete/cancel", applicationHandler.CancelDelete)
	protected.Post("/reload", applicationHandler.Reload)

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
