package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes on the given router
func SetupRoutes(router *gin.Engine, handler *Handler, hub *Hub) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// System endpoints
		v1.GET("/status", handler.GetStatus)
		v1.GET("/config", handler.GetConfig)

		// Run endpoints
		v1.POST("/runs", handler.StartRun)
		v1.GET("/result", handler.GetResult)
		v1.GET("/quality", handler.GetQuality)
		v1.POST("/hint", handler.SetHint)

		// WebSocket endpoint
		if hub != nil {
			v1.GET("/ws", ServeWebSocket(hub))
		}
	}

	// Targets for the throughput and latency probes
	speed := router.Group("/speed")
	{
		speed.GET("/down", SpeedDown)
		speed.POST("/up", SpeedUp)
		speed.GET("/ping", SpeedPing)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (outside versioned API)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
}
