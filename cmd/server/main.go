package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/database"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/logging"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/routes"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
)

func main() {
	cfg := config.Load()

	// Structured logging (JSON to stdout)
	logger := logging.Setup(cfg.LogLevel)

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.AdminPassword == "" {
		slog.Warn("ADMIN_PASSWORD not set, bootstrap admin login disabled")
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Optional shared rate-limit storage
	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Error("redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			storage := database.NewRedisStorage(client, "complaint-desk:ratelimit:")
			defer storage.Close()
			limiterStorage = storage
			slog.Info("redis rate-limit storage enabled")
		}
	}

	// Audit sinks: structured activity log, flat event file, process log
	activities := audit.NewActivityStore(database.DB)
	events := audit.NewFileSink(cfg.EventLogPath, cfg.EventLogMaxBytes)
	sink := audit.NewMultiSink(activities, events, audit.NewSlogSink(logger))

	// Services
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	authService := services.NewAuthService(database.DB, cfg, tokens, sink)
	complaintService := services.NewComplaintService(store.NewComplaintStore(database.DB), sink)
	statsService := services.NewStatsService(database.DB, sink, cfg.StatsCacheTTL)
	adminService := services.NewAdminService(database.DB, activities, events, sink)

	// Sentry error tracking
	var extra []fiber.Handler
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
			extra = append(extra, sentryfiber.New(sentryfiber.Options{
				Repanic:         true,
				WaitForDelivery: false,
			}))
		}
	}

	app := routes.NewApp(cfg, true, extra...)
	routes.Setup(app, cfg, tokens, routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Complaint: handlers.NewComplaintHandler(complaintService),
		Admin:     handlers.NewAdminHandler(statsService, adminService),
		Health:    handlers.NewHealthHandler(database.DB),
	}, limiterStorage)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.AppEnv)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if err := database.Close(database.DB); err != nil {
		slog.Error("database close error", "error", err)
	}

	slog.Info("server stopped")
}
