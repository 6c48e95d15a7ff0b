package main

import (
	"fmt"
	"os"

	"github.com/fitmirror/fitmirror-backend/internal/db"
	"github.com/fitmirror/fitmirror-backend/internal/handlers"
	"github.com/fitmirror/fitmirror-backend/internal/logger"
	"github.com/fitmirror/fitmirror-backend/internal/repos"
	"github.com/fitmirror/fitmirror-backend/internal/server"
	"github.com/fitmirror/fitmirror-backend/internal/services"
	"github.com/fitmirror/fitmirror-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	sizeRepo := repos.NewSizeRepo(thePG, log)
	colorRepo := repos.NewColorRepo(thePG, log)
	productRepo := repos.NewProductRepo(thePG, log)
	variantRepo := repos.NewProductVariantRepo(thePG, log)
	bodyScanRepo := repos.NewBodyScanRepo(thePG, log)
	recommendationRepo := repos.NewRecommendationRepo(thePG, log)

	_ = colorRepo

	// Services
	log.Info("Setting up Services from main...")
	geminiClient := services.NewGeminiClient(log)
	measurementService := services.NewMeasurementService(log)
	skinToneService := services.NewSkinToneService(log)
	recommendationService := services.NewRecommendationService(
		thePG,
		log,
		geminiClient,
		skinToneService,
		productRepo,
		variantRepo,
		sizeRepo,
		recommendationRepo,
	)
	scanService := services.NewScanService(
		thePG,
		log,
		geminiClient,
		measurementService,
		skinToneService,
		recommendationService,
		bodyScanRepo,
		recommendationRepo,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	scanHandler := handlers.NewScanHandler(log, scanService)
	recommendationHandler := handlers.NewRecommendationHandler(log, scanService, recommendationService)
	catalogHandler := handlers.NewCatalogHandler(log, productRepo, variantRepo)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ScanHandler:           scanHandler,
		RecommendationHandler: recommendationHandler,
		CatalogHandler:        catalogHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
