package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcalder/deckard/internal/api"
	"github.com/mcalder/deckard/internal/config"
	"github.com/mcalder/deckard/internal/db"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/repository/sqlite"
	"github.com/mcalder/deckard/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Deckard Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("new_card_limit=%d", cfg.NewCardLimit)
	log.Debug("review_limit=%d", cfg.ReviewLimit)
	log.Debug("learning_steps=%v", cfg.Scheduler.LearningSteps)
	log.Debug("relearn_steps=%v", cfg.Scheduler.RelearnSteps)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Initialize repositories
	deckRepo := sqlite.NewDeckRepository(database.DB)
	noteRepo := sqlite.NewNoteRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)

	// Initialize services
	contentService := services.NewContentService(deckRepo, noteRepo, cardRepo)
	reviewService := services.NewReviewService(deckRepo, cardRepo, cfg.Scheduler, services.SessionLimits{
		NewCards: cfg.NewCardLimit,
		Reviews:  cfg.ReviewLimit,
	})

	srv := &api.Server{
		ContentService: contentService,
		ReviewService:  reviewService,
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Info("===========================================")
	log.Info("Deckard Server Stopped")
	log.Info("===========================================")
}
