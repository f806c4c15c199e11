package domain

import "errors"

var (
	// ErrProductNotFound is returned when no catalog product matches the query
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrLowConfidence is returned when the best fuzzy match scores at or below the threshold
	ErrLowConfidence = errors.New("match confidence below threshold")

	// ErrNoPrescriptionDetails is returned when no OCR line mentions both a dosage and a drug form
	ErrNoPrescriptionDetails = errors.New("no prescription details recognized")

	// ErrOCRProviderFailure is returned when the OCR provider request fails
	ErrOCRProviderFailure = errors.New("OCR provider request failed")

	// ErrCatalogUnavailable is returned when the catalog data service cannot be reached
	ErrCatalogUnavailable = errors.New("catalog service unavailable")

	// ErrModelUnavailable is returned by the mobile path when the local
	// classification model failed to load at startup
	ErrModelUnavailable = errors.New("classification model not loaded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
