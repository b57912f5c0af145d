package main

import (
	"context"
	"fmt"
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
	"github.com/Chitopro2255V/kichewebapp/internal/telegram"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting K'iche' bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.RequireBotToken(); err != nil {
		logger.Fatal("Invalid config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully", zap.String("db_driver", cfg.Database.Driver))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database with retries
	db, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
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
	learners := service.NewLearnerService(repo, logger)

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	h := telegram.NewHandler(bot, cat, learners, cfg.SessionTTL, logger)
	h.RegisterHandlers()

	logger.Info("Handlers registered")

	// Forget idle chats in background
	cleanup := service.NewCleanupService(logger, h)
	go cleanup.Run(ctx, time.Hour)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	bot.Stop()
	cancel()

	logger.Info("Bot stopped gracefully")
}
