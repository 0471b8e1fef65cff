package router

import (
	"github.com/labstack/echo/v4"

	"mercadolens/internal/rest"
)

func SetupEventRoutes(api *echo.Group, handler *rest.EventsHandler) {
	events := api.Group("/events")

	events.POST("", handler.RecordEvent)
	events.POST("/batch", handler.RecordBatch)
}

func SetupAnalyticsRoutes(api *echo.Group, behavior *rest.BehaviorHandler, health *rest.HealthHandler, authRequired echo.MiddlewareFunc) {
	analytics := api.Group("/analytics", authRequired)

	analytics.GET("/behavior/:actorId", behavior.AnalyzeUserBehavior)
	analytics.GET("/lifecycle/:productId", behavior.AnalyzeProductLifecycle)
	analytics.GET("/health", health.CalculateHealthScore)
}

func SetupPromotionRoutes(api *echo.Group, handler *rest.PromotionHandler, authRequired echo.MiddlewareFunc) {
	promotions := api.Group("/analytics/promotions", authRequired)

	promotions.GET("", handler.GenerateSuggestions)
}

func SetupGondolaRoutes(api *echo.Group, handler *rest.GondolaHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	gondola := api.Group("/analytics/gondola", authRequired, adminOnly)

	gondola.GET("", handler.GenerateLayout)
}

func SetupReportRoutes(api *echo.Group, handler *rest.ReportHandler, authRequired, adminOnly echo.MiddlewareFunc) {
	reports := api.Group("/analytics/reports", authRequired, adminOnly)

	reports.GET("/weekly", handler.GenerateWeeklyReport)
}

func SetupGroocRoutes(api *echo.Group, handler *rest.GroocHandler, authRequired echo.MiddlewareFunc) {
	grooc := api.Group("/grooc", authRequired)

	grooc.POST("/ask", handler.Ask)
}
