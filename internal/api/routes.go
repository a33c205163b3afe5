package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/assistant/internal/telemetry"
)

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics *telemetry.Metrics) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/ready", handler.ReadinessCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.POST("/advanced-search", handler.AdvancedSearch)
		api.POST("/video-search", handler.VideoSearch)
		api.GET("/guest-status", handler.GuestStatus)
		api.POST("/chat", handler.Chat)
	}
}
