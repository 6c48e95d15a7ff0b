package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fitmirror/fitmirror-backend/internal/handlers"
)

type RouterConfig struct {
	ScanHandler           *handlers.ScanHandler
	RecommendationHandler *handlers.RecommendationHandler
	CatalogHandler        *handlers.CatalogHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Scan pipeline
		api.POST("/scan", cfg.ScanHandler.ProcessScan)
		api.POST("/scan/frame", cfg.ScanHandler.AnalyzeFrame)

		// Recommendations
		api.GET("/recommendations/:session_id", cfg.RecommendationHandler.GetForSession)
		api.GET("/recommendations/:session_id/variants", cfg.RecommendationHandler.GetMatchingVariants)
		api.GET("/recommendations/:session_id/styling", cfg.RecommendationHandler.GetStylingAdvice)

		// Catalog
		api.GET("/products", cfg.CatalogHandler.ListProducts)
		api.GET("/products/:id", cfg.CatalogHandler.GetProduct)
		api.GET("/inventory", cfg.CatalogHandler.ListInventory)
	}

	return router
}
