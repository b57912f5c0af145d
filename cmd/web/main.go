package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/config"
	"github.com/Chitopro2255V/kichewebapp/internal/database"
	"github.com/Chitopro2255V/kichewebapp/internal/repository"
	"github.com/Chitopro2255V/kichewebapp/internal/repository/postgres"
	"github.com/Chitopro2255V/kichewebapp/internal/repository/sqlite"
	"github.com/Chitopro2255V/kichewebapp/internal/service"
	"github.com/Chitopro2255V/kichewebapp/internal/web"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting K'iche' web server")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.Driver, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cat, err := catalog.LoadFile(cfg.ContentPath, logger)
	if err != nil {
		logger.Fatal("Failed to load lessons", zap.Error(err))
	}

	var repo repository.LearnerRepository
	if cfg.Database.Driver == config.DriverPostgres {
		repo = postgres.NewLearnerRepo(db)
	} else {
		repo = sqlite.Open(db)
	}

	sessions := web.NewSessionStore(cfg.SessionTTL)
	h := web.NewHandler(cat, service.NewLearnerService(repo, logger), sessions, logger,
		web.WithMediaDir(cfg.MediaDir),
	)

	go service.NewCleanupService(logger, sessions).Run(ctx, 10*time.Minute)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}
	cancel()

	logger.Info("Server stopped gracefully")
}
