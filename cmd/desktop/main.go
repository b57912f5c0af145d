package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Chitopro2255V/kichewebapp/internal/catalog"
	"github.com/Chitopro2255V/kichewebapp/internal/config"
	"github.com/Chitopro2255V/kichewebapp/internal/database"
	"github.com/Chitopro2255V/kichewebapp/internal/desktop"
	"github.com/Chitopro2255V/kichewebapp/internal/repository"
	"github.com/Chitopro2255V/kichewebapp/internal/repository/postgres"
	"github.com/Chitopro2255V/kichewebapp/internal/repository/sqlite"
	"github.com/Chitopro2255V/kichewebapp/internal/service"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(context.Background(), cfg, logger)
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

	app := desktop.NewApp(cat, service.NewLearnerService(repo, logger), cfg.MediaDir, logger)

	logger.Info("Desktop window opened")
	desktop.Run(app)
	logger.Info("Desktop window closed")
}
