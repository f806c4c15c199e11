package domain

import (
	"context"
	"time"
)

// OCRProvider defines the interface to the external OCR service.
// SubmitImage returns the recognized lines in emission order
// (top-to-bottom, left-to-right).
type OCRProvider interface {
	SubmitImage(ctx context.Context, image []byte) ([]OcrLine, error)
}

// CatalogStore defines the interface to the catalog data service.
type CatalogStore interface {
	ListNames(ctx context.Context) ([]ProductNameEntry, error)
	GetByName(ctx context.Context, name string) (*Product, error)
	GetByID(ctx context.Context, productID string) (*Product, error)
}

// OCRCache caches OCR results keyed by image digest. OCR output is
// deterministic for identical bytes, and the provider call is the
// expensive, rate-limited step of every recognition request.
type OCRCache interface {
	Get(ctx context.Context, key string) ([]OcrLine, error)
	Set(ctx context.Context, key string, lines []OcrLine, ttl time.Duration) error
}
