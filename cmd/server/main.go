package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Allono07/live-event-validation-netcore/internal/config"
	"github.com/Allono07/live-event-validation-netcore/internal/handlers"
	"github.com/Allono07/live-event-validation-netcore/internal/middleware"
	"github.com/Allono07/live-event-validation-netcore/internal/repository"
	"github.com/Allono07/live-event-validation-netcore/internal/service"
	"github.com/Allono07/live-event-validation-netcore/internal/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting event validation service",
		zap.Int("port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
	)

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to create database connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database")

	if err := runMigrations(context.Background(), pool); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database migrations completed")

	appRepo := repository.NewAppRepository(pool)
	ruleRepo := repository.NewRuleRepository(pool)
	logRepo := repository.NewLogRepository(pool)

	dateOnly := make(map[string]struct{}, len(cfg.DateOnlyEvents))
	for _, name := range cfg.DateOnlyEvents {
		dateOnly[name] = struct{}{}
	}
	engine := validator.New(validator.Options{
		AcceptIntAsFloat: cfg.AcceptIntAsFloat,
		DateOnlyEvents:   dateOnly,
	})

	eventService := service.NewEventService(appRepo, ruleRepo, logRepo, engine, logger)
	ruleService := service.NewRuleService(appRepo, ruleRepo, logger)
	reportingService := service.NewReportingService(appRepo, ruleRepo, logRepo, logger)
	appService := service.NewAppService(appRepo, logger)

	eventHandler := handlers.NewEventHandler(eventService, logger)
	ruleHandler := handlers.NewRuleHandler(ruleService, logger)
	dashboardHandler := handlers.NewDashboardHandler(reportingService, appService, cfg.StatsDefaultHours, logger)
	healthHandler := handlers.NewHealthHandler()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())

	// Ingestion is open to devices; dashboard routes can require a token.
	router.POST("/api/logs/:app_id", eventHandler.ReceiveLog)
	router.GET("/api/health", healthHandler.HealthCheck)

	auth := middleware.TokenAuth(logger, cfg.AuthEnabled, cfg.AuthToken)
	apps := router.Group("/api/apps", auth)
	{
		apps.POST("", dashboardHandler.CreateApp)
		apps.GET("", dashboardHandler.ListApps)
		apps.GET("/:app_id", dashboardHandler.GetApp)
		apps.POST("/:app_id/rules", ruleHandler.UploadRules)
		apps.GET("/:app_id/rules", ruleHandler.ListRules)
		apps.GET("/:app_id/stats", dashboardHandler.GetStats)
		apps.GET("/:app_id/logs", dashboardHandler.GetLogs)
		apps.POST("/:app_id/logs/purge", dashboardHandler.PurgeLogs)
		apps.GET("/:app_id/coverage", dashboardHandler.GetCoverage)
		apps.GET("/:app_id/events/fully-valid", dashboardHandler.GetFullyValidEvents)
	}

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	logger.Info("Server listening", zap.String("address", addr))

	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationSQL, err := os.ReadFile("migrations/001_initial_schema.sql")
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func ginLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		logger.Info("HTTP request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
		)
	}
}
