package http

import (
	"github.com/gin-gonic/gin"
	"github.com/pharmalens/backend/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(MetricsMiddleware())

	// Bound multipart uploads
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	// Health and metrics endpoints
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		api.POST("/predict", handler.Predict)
		api.POST("/predict/mobile", handler.PredictMobile)
		api.POST("/prescribe", handler.Prescribe)

		products := api.Group("/products")
		{
			products.GET("/name/:productName", handler.GetProductByName)
			products.GET("/id/:productID", handler.GetProductByID)
		}
	}

	return router
}
