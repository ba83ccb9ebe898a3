package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes registers the API. A nil gatherer leaves /metrics unmounted.
func SetupRoutes(router *gin.Engine, handler *Handler, gatherer prometheus.Gatherer) {
	router.Use(RequestID())

	api := router.Group("/api/v1")
	{
		api.GET("/instruments/search", handler.SearchInstruments)

		api.GET("/catalog", handler.GetCatalog)
		api.POST("/catalog/reload", handler.ReloadCatalog)
		api.PUT("/catalog/instruments", handler.ImportInstruments)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
