package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bilgisen/zenstudio/internal/api"
	"github.com/bilgisen/zenstudio/internal/app"
	"github.com/bilgisen/zenstudio/internal/config"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: cfg.LogOutput,
		Pretty: cfg.LogPretty || !cfg.IsProduction(),
	})
	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx := context.Background()
	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Close()

	info, err := application.Projects.Ensure(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare app root")
	}
	log.Info().
		Str("app_root", info.AppRoot).
		Str("last_project", info.Config.LastProjectPath).
		Msg("Project config ready")

	server := fiber.New(fiber.Config{
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.ReadTimeout,
		IdleTimeout:           120 * time.Second,
		ErrorHandler:          middleware.ErrorHandler,
		DisableStartupMessage: cfg.IsProduction(),
	})
	api.SetupRoutes(server, application.Handlers(), api.RouteOptions{APIToken: cfg.APIToken})

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("Starting server")
		if err := server.Listen(cfg.Addr()); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
