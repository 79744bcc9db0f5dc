package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/SscSPs/mbg_dapur_ledger/internal/buildinfo"
	"github.com/SscSPs/mbg_dapur_ledger/internal/core/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/handlers"
	"github.com/SscSPs/mbg_dapur_ledger/internal/middleware"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/storage"
	"github.com/SscSPs/mbg_dapur_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// @title MBG Dapur Ledger API
// @version 1.0
// @description Double-entry general ledger for a community kitchen: chart of accounts, journal entries, account ledgers and financial reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Starting dapur ledger",
		slog.String("version", buildinfo.Version),
		slog.String("storage_driver", cfg.StorageDriver))

	repos, closeRepos, err := storage.Open(context.Background(), cfg, storage.Options{Migrate: true}, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeRepos()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	serviceContainer := services.NewServiceContainer(cfg, repos, posthogClient)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := handlers.RegisterRoutes(r, cfg, serviceContainer, posthogClient); err != nil {
		logger.Error("Failed to register routes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
