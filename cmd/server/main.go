package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pharmalens/backend/config"
	httpDelivery "github.com/pharmalens/backend/internal/delivery/http"
	"github.com/pharmalens/backend/internal/infrastructure/cache"
	"github.com/pharmalens/backend/internal/infrastructure/catalog"
	"github.com/pharmalens/backend/internal/infrastructure/classifier"
	"github.com/pharmalens/backend/internal/infrastructure/ocrspace"
	"github.com/pharmalens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting PharmaLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	ocrCache := cache.NewMemoryCache()
	log.Printf("OCR cache TTL: %s", cfg.Cache.TTL)

	ocrClient := ocrspace.NewClient(cfg.OCR.APIKey, cfg.OCR.BaseURL, cfg.OCR.Timeout, cfg.RateLimit.OCRPerMinute)
	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		ocrClient.SetDebug(true)
		log.Printf("OCR client debug mode enabled")
	}

	log.Printf("OCR provider: %s (key: %s...)", cfg.OCR.BaseURL, truncateKey(cfg.OCR.APIKey))
	log.Printf("Catalog service: %s", cfg.Catalog.BaseURL)

	// The mobile surface requires the classification model; a failed
	// load keeps the rest of the API serving.
	model, err := classifier.New(cfg.Model.Path)
	if err != nil {
		log.Printf("WARNING: classification model unavailable, mobile predict disabled: %v", err)
		model = nil
	} else {
		defer model.Close()
		log.Printf("Classification model loaded: %s", cfg.Model.Path)
	}

	// Initialize usecase layer
	recognitionService := usecase.NewRecognitionService(
		ocrClient,
		catalogClient,
		ocrCache,
		model,
		usecase.RecognitionConfig{
			CacheTTL:            cfg.Cache.TTL,
			MaxRankedLines:      cfg.Matching.MaxRankedLines,
			ConfidenceThreshold: cfg.Matching.ConfidenceThreshold,
			AssetBaseURL:        cfg.Catalog.AssetBaseURL,
			EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
		},
	)

	log.Printf("Matching: threshold=%d, max ranked lines=%d, debug=%v",
		cfg.Matching.ConfidenceThreshold,
		cfg.Matching.MaxRankedLines,
		cfg.Matching.EnableDebugLogging)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(recognitionService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// truncateKey shortens a secret for log output
func truncateKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	return key[:8]
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
