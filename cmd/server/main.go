package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/club-sim/internal/api"
	"github.com/stitts-dev/club-sim/internal/services"
	"github.com/stitts-dev/club-sim/pkg/config"
	"github.com/stitts-dev/club-sim/pkg/database"
	"github.com/stitts-dev/club-sim/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Archive is optional
	var archive *services.Archive
	if cfg.DatabaseURL != "" {
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		archive, err = services.NewArchive(db.DB, log)
		if err != nil {
			log.Fatalf("Failed to initialize archive: %v", err)
		}
	}

	// Cache is optional; a Redis outage only disables it
	cache := services.NewSnapshotCache(nil, cfg.CacheTTL, cfg.CircuitBreakerThreshold, log)
	if cfg.RedisURL != "" {
		redisClient, err := services.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unavailable at startup, snapshots will be recomputed")
		}
		cache = services.NewSnapshotCache(redisClient, cfg.CacheTTL, cfg.CircuitBreakerThreshold, log)
	}

	hub := services.NewLiveHub(log)
	go hub.Run(ctx)

	defaults := services.SeasonDefaults{
		League:   cfg.LeagueName,
		UserClub: cfg.UserClub,
		Seed:     cfg.SeasonSeed,
		Cadence:  cfg.MonthlyCadenceRounds,
	}
	seasons := services.NewSeasonService(defaults, cache, archive, hub, log)
	projections := services.NewProjectionService(cfg.ProjectionRuns, cfg.MaxProjectionRuns, cfg.ProjectionWorkers, defaults, log)

	if cfg.AutoAdvanceSchedule != "" {
		scheduler := services.NewRoundScheduler(seasons, cfg.AutoAdvanceSchedule, log)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start round scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	router := api.NewRouter(api.Dependencies{
		Seasons:     seasons,
		Projections: projections,
		Cache:       cache,
		Archive:     archive,
		Hub:         hub,
		Config:      cfg,
		Logger:      log,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Starting club-sim server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited")
}
