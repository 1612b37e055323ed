package backoffice

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("request processed")
	})

	reports := router.Group("/reports")
	{
		reports.GET("/transactions/:id", handler.TransactionReport)
		reports.GET("/users/:id/statement", handler.UserStatement)
		reports.GET("/products/low-stock", handler.LowStock)
		reports.GET("/compensations", handler.CompensationQueue)
	}
	router.GET("/health", handler.HealthCheck)

	return router
}
