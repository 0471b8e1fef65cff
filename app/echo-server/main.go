package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mercadolens/app/echo-server/router"
	"mercadolens/business/behavior"
	"mercadolens/business/collector"
	"mercadolens/business/gondola"
	"mercadolens/business/grooc"
	"mercadolens/business/health"
	"mercadolens/business/promotion"
	"mercadolens/business/report"
	"mercadolens/internal/middleware"
	psqlRepo "mercadolens/internal/repository/postgres"
	redisRepo "mercadolens/internal/repository/redis"
	"mercadolens/internal/rest"
	"mercadolens/pkg/config"
	"mercadolens/pkg/database"
	redisdb "mercadolens/pkg/database/redis"
	"mercadolens/pkg/logger"
	"mercadolens/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Mercadolens", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	redisClient, err := redisdb.NewRedisClient(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	metrics.Init()

	// Init repo
	eventRepo := psqlRepo.NewEventRepository(db)
	catalogRepo := psqlRepo.NewCatalogRepository(db)
	cachedCatalog := redisRepo.NewCachedCatalogRepository(
		catalogRepo,
		redisClient,
		time.Duration(cfg.Engine.CatalogCacheTTLSeconds)*time.Second,
	)

	// Init services
	collectorService := collector.NewCollectorService(eventRepo)
	behaviorService := behavior.NewBehaviorService(eventRepo)
	healthService := health.NewHealthService(eventRepo, cachedCatalog)
	promotionService := promotion.NewPromotionService(
		behaviorService, eventRepo, cachedCatalog,
		cfg.Engine.ProductSampleLimit, cfg.Engine.AnalysisWorkers,
	)
	gondolaService := gondola.NewGondolaService(
		behaviorService, cachedCatalog,
		cfg.Engine.ProductSampleLimit, cfg.Engine.AnalysisWorkers,
	)
	reportService := report.NewReportService(healthService, promotionService)
	groocService := grooc.NewGroocService(healthService, promotionService, behaviorService, reportService)

	// Init handlers
	eventsHandler := rest.NewEventsHandler(collectorService)
	behaviorHandler := rest.NewBehaviorHandler(behaviorService, cfg.Engine.BehaviorLookbackDays, cfg.Engine.LifecycleLookbackMonths)
	healthHandler := rest.NewHealthHandler(healthService, cfg.Engine.HealthLookbackDays)
	promotionHandler := rest.NewPromotionHandler(promotionService)
	gondolaHandler := rest.NewGondolaHandler(gondolaService)
	reportHandler := rest.NewReportHandler(reportService)
	groocHandler := rest.NewGroocHandler(groocService)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	authRequired := middleware.AuthMiddleware()
	adminOnly := middleware.AdminOnly()

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupEventRoutes(api, eventsHandler)
	router.SetupAnalyticsRoutes(api, behaviorHandler, healthHandler, authRequired)
	router.SetupPromotionRoutes(api, promotionHandler, authRequired)
	router.SetupGondolaRoutes(api, gondolaHandler, authRequired, adminOnly)
	router.SetupReportRoutes(api, reportHandler, authRequired, adminOnly)
	router.SetupGroocRoutes(api, groocHandler, authRequired)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if err := redisdb.CloseRedisClient(redisClient); err != nil {
		logger.Error("Redis shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
