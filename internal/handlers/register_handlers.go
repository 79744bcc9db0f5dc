package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/mbg_dapur_ledger/cmd/docs"
	portssvc "github.com/SscSPs/mbg_dapur_ledger/internal/core/ports/services"
	"github.com/SscSPs/mbg_dapur_ledger/internal/middleware"
	"github.com/SscSPs/mbg_dapur_ledger/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	events middleware.EventEnqueuer,
) error {
	if err := RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	r.Use(cors.New(corsConfig(cfg)))

	globalLimiter, err := middleware.NewMemoryLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("invalid RATE_LIMIT: %w", err)
	}
	loginLimiter, err := middleware.NewMemoryLimiter(cfg.LoginRateLimit)
	if err != nil {
		return fmt.Errorf("invalid LOGIN_RATE_LIMIT: %w", err)
	}
	r.Use(middleware.RateLimit(globalLimiter))

	r.GET("/health", health)

	api := r.Group("/api/v1")
	api.GET("/health", health)

	// Register public authentication routes
	registerAuthRoutes(api, services.User, services.Token, middleware.RateLimit(loginLimiter))

	// Everything else requires a bearer token
	v1 := api.Group("", middleware.AuthMiddleware(cfg.JWTSecret), middleware.PosthogMiddleware(events))
	RegisterAccountRoutes(v1, services.Account)
	RegisterJournalRoutes(v1, services.Journal)
	RegisterLedgerRoutes(v1, services.Ledger, cfg.ReportLocation)
	RegisterReportingRoutes(v1, services.Reporting, cfg.ReportLocation)

	setupSwaggerRoutes(r, cfg)
	return nil
}

func health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func corsConfig(cfg *config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowOrigins = cfg.CORSAllowedOrigins
	if len(cc.AllowOrigins) == 0 {
		slog.Warn("CORS_ALLOWED_ORIGINS empty, allowing all origins")
		cc.AllowOrigins = nil
		cc.AllowAllOrigins = true
	}
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	cc.ExposeHeaders = []string{IntegrityHeader, "Content-Disposition", middleware.RequestIDHeader}
	return cc
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
