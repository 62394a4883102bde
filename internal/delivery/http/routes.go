package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastelens/backend/config"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// SetupRouter creates and configures the Gin router.
// metricsHandler may be nil, in which case /metrics is not mounted.
func SetupRouter(cfg *config.Config, handler *Handler, metricsHandler http.Handler, log logger.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		// Triage
		api.POST("/sessions", handler.StartSession)
		api.GET("/blocks", handler.CurrentBlock)
		api.POST("/classify", handler.Classify)
		api.POST("/skip", handler.Skip)
		api.POST("/undo", handler.Undo)
		api.POST("/delete", handler.DeleteConnection)

		// References
		api.POST("/match", handler.Match)
		api.GET("/styleguides/:channel", handler.GetStyleGuide)
	}

	return router
}
