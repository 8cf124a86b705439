package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"roster/catalog"
	"roster/config"
	"roster/database"
	"roster/handlers"
	"roster/middleware"
	"roster/models"
	"roster/schedule"
	"roster/timeutil"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Wire the schedule engine
	tz := timeutil.NewNormalizer(cfg.UTCOffsetMin)
	cat := catalog.New(db, tz)
	engine := schedule.New(db, tz, cat, log.Default())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, db)
	scheduleHandler := handlers.NewScheduleHandler(engine, cfg.EnabledPresetIDs)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Post("/api/login", authHandler.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.Auth(db))

		r.Post("/api/pending", scheduleHandler.SubmitPending)
		r.Delete("/api/pending/batch/{batchID}", scheduleHandler.CancelBatch)
		r.Delete("/api/pending/{id}", scheduleHandler.CancelAdjustment)
		r.Get("/api/pending", scheduleHandler.ListPending)
		r.Get("/api/presets/{presetID}/expand/{date}", scheduleHandler.PreviewPreset)
		r.Get("/api/schedule/{staffID}/{date}", scheduleHandler.ComposedSchedule)

		// Approver and admin only routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleApprover))
			r.Post("/api/approvals/approve", scheduleHandler.Approve)
			r.Post("/api/approvals/reject", scheduleHandler.Reject)
			r.Post("/api/approvals/bulk-approve", scheduleHandler.BulkApprove)
		})
	})

	log.Printf("Server starting on port %s", cfg.ServerPort)
	log.Fatal(http.ListenAndServe(":"+cfg.ServerPort, router))
}
