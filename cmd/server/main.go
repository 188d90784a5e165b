package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/duyn/calofit-api/internal/config"
	"github.com/duyn/calofit-api/internal/database"
	"github.com/duyn/calofit-api/internal/handlers"
	"github.com/duyn/calofit-api/internal/logging"
	"github.com/duyn/calofit-api/internal/routes"
	"github.com/duyn/calofit-api/internal/scheduler"
	"github.com/duyn/calofit-api/internal/services"
	"github.com/duyn/calofit-api/internal/store"
	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to open database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var transport services.Transport
	if cfg.PushDisabled {
		slog.Warn("Push delivery disabled, notifications will only be recorded")
		transport = services.DisabledTransport{}
	} else {
		transport, err = services.NewFCMTransport(ctx, cfg.FCMServiceAccount)
		if err != nil {
			slog.Error("Failed to init FCM transport", "error", err)
			os.Exit(1)
		}
	}

	users := store.NewUserStore(db)
	tokens := store.NewTokenStore(db)
	records := store.NewNotificationStore(db)
	metrics := store.NewMetricsStore(db)
	logs := store.NewLogStore(db)
	otps := store.NewOTPStore(db)

	notifier := services.NewNotifier(transport, tokens, records, users, cfg.Notify)
	notifier.Start(ctx)

	ai := services.NewAIClient(cfg.AIServiceURL, cfg.AITimeout)

	passes := scheduler.NewPasses(users, metrics, records, tokens, notifier, cfg.Scheduler)
	sched := scheduler.New(passes.Jobs())
	sched.Start(ctx)

	h := handlers.New(cfg, users, tokens, records, metrics, logs, otps, notifier, ai)

	app := fiber.New(fiber.Config{
		AppName: "CaloFit API",
	})
	app.Static("/uploads", cfg.UploadDir)
	routes.Setup(app, h, cfg.JWTSecret)

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	if err := app.Shutdown(); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	sched.Stop()
	cancel()
	notifier.Stop()
	slog.Info("Server exited")
}
