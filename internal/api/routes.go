package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sheets", handler.UploadSheet)
		v1.POST("/runs", handler.CreateRun)
		v1.GET("/runs/:run_id", handler.GetRun)
	}
}

// NewRouter builds the engine with the service middleware stack.
func NewRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryMiddleware())
	router.Use(CORSMiddleware())
	router.Use(LoggingMiddleware())

	SetupRoutes(router, handler)
	return router
}
