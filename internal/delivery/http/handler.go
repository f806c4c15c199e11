package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pharmalens/backend/internal/domain"
)

// RecognitionService defines the usecase surface the handlers need
type RecognitionService interface {
	Predict(ctx context.Context, image []byte) (*domain.Product, *domain.MatchResult, error)
	PredictMobile(ctx context.Context, image []byte) (string, error)
	Prescribe(ctx context.Context, image []byte) (string, error)
	FindProductByName(ctx context.Context, name string) (*domain.Product, *domain.MatchResult, error)
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	recognition RecognitionService
}

// NewHandler creates a new HTTP handler
func NewHandler(recognition RecognitionService) *Handler {
	return &Handler{recognition: recognition}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pharmalens-backend",
		"version": "1.0.0",
	})
}

// Predict handles package recognition: multipart image in, matched
// catalog record out.
func (h *Handler) Predict(c *gin.Context) {
	image, ok := h.readImage(c)
	if !ok {
		recognitionRequestsTotal.WithLabelValues("predict", "bad_input").Inc()
		return
	}

	product, result, err := h.recognition.Predict(c.Request.Context(), image)
	if err != nil {
		h.writeRecognitionError(c, "predict", result, err)
		return
	}

	recognitionRequestsTotal.WithLabelValues("predict", "matched").Inc()
	matchScore.Observe(float64(result.Score))
	c.JSON(http.StatusOK, product)
}

// PredictMobile returns the raw search string as the predicted class
func (h *Handler) PredictMobile(c *gin.Context) {
	image, ok := h.readImage(c)
	if !ok {
		recognitionRequestsTotal.WithLabelValues("mobile", "bad_input").Inc()
		return
	}

	predicted, err := h.recognition.PredictMobile(c.Request.Context(), image)
	if err != nil {
		h.writeRecognitionError(c, "mobile", nil, err)
		return
	}

	recognitionRequestsTotal.WithLabelValues("mobile", "matched").Inc()
	c.JSON(http.StatusOK, gin.H{"predicted_class": predicted})
}

// Prescribe returns the first OCR line mentioning both a dosage and a
// drug form.
func (h *Handler) Prescribe(c *gin.Context) {
	image, ok := h.readImage(c)
	if !ok {
		recognitionRequestsTotal.WithLabelValues("prescribe", "bad_input").Inc()
		return
	}

	line, err := h.recognition.Prescribe(c.Request.Context(), image)
	if err != nil {
		h.writeRecognitionError(c, "prescribe", nil, err)
		return
	}

	recognitionRequestsTotal.WithLabelValues("prescribe", "matched").Inc()
	c.JSON(http.StatusOK, gin.H{"predicted_class": line})
}

// GetProductByName fuzzy-searches the catalog by free-text name
func (h *Handler) GetProductByName(c *gin.Context) {
	name := c.Param("productName")

	product, result, err := h.recognition.FindProductByName(c.Request.Context(), name)
	if err != nil {
		h.writeRecognitionError(c, "search", result, err)
		return
	}

	recognitionRequestsTotal.WithLabelValues("search", "matched").Inc()
	matchScore.Observe(float64(result.Score))
	c.JSON(http.StatusOK, product)
}

// GetProductByID resolves a product identifier to its full record
func (h *Handler) GetProductByID(c *gin.Context) {
	product, err := h.recognition.FindProductByID(c.Request.Context(), c.Param("productID"))
	if err != nil {
		h.writeRecognitionError(c, "search", nil, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// readImage extracts the multipart "image" field. Writes the 400
// response itself and returns ok=false when the field is missing or
// unreadable.
func (h *Handler) readImage(c *gin.Context) ([]byte, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to receive image"})
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil || len(image) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to receive image"})
		return nil, false
	}

	uploadSizeBytes.Observe(float64(len(image)))
	return image, true
}

// writeRecognitionError maps domain errors to the HTTP contract. Every
// path produces an explicit response body - no implicit empty replies.
func (h *Handler) writeRecognitionError(c *gin.Context, surface string, result *domain.MatchResult, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		recognitionRequestsTotal.WithLabelValues(surface, "bad_input").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request"})

	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrLowConfidence):
		recognitionRequestsTotal.WithLabelValues(surface, "not_found").Inc()
		if result != nil {
			matchScore.Observe(float64(result.Score))
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})

	case errors.Is(err, domain.ErrNoPrescriptionDetails):
		recognitionRequestsTotal.WithLabelValues(surface, "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"message": "No prescription details recognized"})

	case errors.Is(err, domain.ErrModelUnavailable):
		recognitionRequestsTotal.WithLabelValues(surface, "model_unavailable").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Model not loaded, cannot perform prediction"})

	default:
		recognitionRequestsTotal.WithLabelValues(surface, "upstream_error").Inc()
		log.Printf("[HTTP] %s failed: %v", surface, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An error occurred"})
	}
}
