package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/daleplay/sync-center/internal/config"
	"github.com/daleplay/sync-center/internal/database"
	"github.com/daleplay/sync-center/internal/events"
	"github.com/daleplay/sync-center/internal/modules/activity"
	"github.com/daleplay/sync-center/internal/modules/alerts"
	"github.com/daleplay/sync-center/internal/modules/catalog"
	"github.com/daleplay/sync-center/internal/modules/opportunities"
	"github.com/daleplay/sync-center/internal/modules/reports"
	"github.com/daleplay/sync-center/internal/scheduler"
	"github.com/daleplay/sync-center/internal/server"
	"github.com/daleplay/sync-center/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Dale Play Sync Center")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(catalog.InitSchema, opportunities.InitSchema, activity.InitSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Events
	eventManager := events.NewManager(log)

	// Repositories
	catalogRepo := catalog.NewRepository(db.Conn(), log)
	opportunityRepo := opportunities.NewRepository(db.Conn(), log)
	activityRepo := activity.NewRepository(db.Conn(), log)

	// Services
	opportunityService := opportunities.NewService(opportunityRepo, catalogRepo, activityRepo, eventManager, log)
	alertService := alerts.NewService(opportunityRepo, cfg.AlertDeadlineDays, cfg.AlertApprovalDays, log)
	reportService := reports.NewService(opportunityRepo, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	if err := registerJobs(sched, db, alertService, eventManager, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}

	// One sweep at startup so a restart doesn't wait an hour for alerts
	if err := sched.RunNow(scheduler.NewAlertSweepJob(alertService, eventManager, log)); err != nil {
		log.Error().Err(err).Msg("Initial alert sweep failed")
	}

	// HTTP server
	srv := server.New(server.Config{
		Port:   cfg.Port,
		Log:    log,
		DB:     db,
		Config: cfg,
		Handlers: server.Handlers{
			Catalog:       catalog.NewHandler(catalogRepo, eventManager, log),
			Opportunities: opportunities.NewHandler(opportunityService, opportunityRepo, log),
			Activity:      activity.NewHandler(activityRepo, log),
			Alerts:        alerts.NewHandler(alertService, log),
			Reports:       reports.NewHandler(reportService, log),
		},
		DevMode: cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	db *database.DB,
	alertService *alerts.Service,
	eventManager *events.Manager,
	log zerolog.Logger,
) error {
	// Hourly pipeline alert sweep
	if err := sched.AddJob("0 0 * * * *", scheduler.NewAlertSweepJob(alertService, eventManager, log)); err != nil {
		return err
	}

	// Database health check every 6 hours
	if err := sched.AddJob("0 0 */6 * * *", scheduler.NewHealthCheckJob(db, log)); err != nil {
		return err
	}

	return nil
}
