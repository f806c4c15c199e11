package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pharmalens/backend/internal/domain"
)

// ModelGuard reports whether the locally loaded classification model is
// usable. The mobile path refuses requests when it is not.
type ModelGuard interface {
	Available() bool
}

// RecognitionConfig holds configuration for the recognition service
type RecognitionConfig struct {
	CacheTTL            time.Duration
	MaxRankedLines      int
	ConfidenceThreshold int
	AssetBaseURL        string
	EnableDebugLogging  bool
}

// RecognitionService answers "what product is this" for the three
// calling surfaces: generic predict, mobile predict, and prescription
// keyword extraction. Each request is stateless end-to-end; the OCR
// provider and catalog store calls are the only blocking points.
type RecognitionService struct {
	ocr      domain.OCRProvider
	catalog  domain.CatalogStore
	cache    domain.OCRCache
	model    ModelGuard
	matcher  *MatchingService
	cacheTTL time.Duration
	maxLines int
	assetURL string
	debug    bool
}

// NewRecognitionService creates a new recognition service with dependencies.
// model may be nil when the classification model failed to load.
func NewRecognitionService(
	ocr domain.OCRProvider,
	catalog domain.CatalogStore,
	cache domain.OCRCache,
	model ModelGuard,
	config RecognitionConfig,
) *RecognitionService {
	matcher := NewMatchingService(MatchConfig{
		ConfidenceThreshold: config.ConfidenceThreshold,
		EnableDebugLogging:  config.EnableDebugLogging,
	})

	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	maxLines := config.MaxRankedLines
	if maxLines <= 0 {
		maxLines = defaultMaxRankedLines
	}

	return &RecognitionService{
		ocr:      ocr,
		catalog:  catalog,
		cache:    cache,
		model:    model,
		matcher:  matcher,
		cacheTTL: cacheTTL,
		maxLines: maxLines,
		assetURL: strings.TrimRight(config.AssetBaseURL, "/"),
		debug:    config.EnableDebugLogging,
	}
}

// Predict identifies the photographed product. Flow: OCR -> rank lines
// into a search string -> fuzzy match against a fresh catalog name list
// -> resolve the accepted name to a full record with its image URL.
func (s *RecognitionService) Predict(ctx context.Context, image []byte) (*domain.Product, *domain.MatchResult, error) {
	if len(image) == 0 {
		return nil, nil, domain.ErrInvalidRequest
	}

	lines, err := s.recognizeLines(ctx, image)
	if err != nil {
		return nil, nil, err
	}

	searchString := RankLines(lines, s.maxLines)
	if s.debug {
		log.Printf("[PREDICT] Search string: %q", searchString)
	}

	result, err := s.matchCatalog(ctx, searchString)
	if err != nil {
		return nil, result, err
	}

	product, err := s.catalog.GetByName(ctx, result.MatchedName)
	if err != nil {
		return nil, result, err
	}
	product.Image = s.imageURL(product.ProductID)

	return product, result, nil
}

// PredictMobile returns the ranked search string as the predicted
// class, with no catalog lookup - a deliberately cheaper response for
// constrained clients. Refuses every request when the classification
// model resource failed to load at startup.
func (s *RecognitionService) PredictMobile(ctx context.Context, image []byte) (string, error) {
	if s.model == nil || !s.model.Available() {
		return "", domain.ErrModelUnavailable
	}
	if len(image) == 0 {
		return "", domain.ErrInvalidRequest
	}

	lines, err := s.recognizeLines(ctx, image)
	if err != nil {
		return "", err
	}

	searchString := RankLines(lines, s.maxLines)
	if s.debug {
		log.Printf("[PREDICT-MOBILE] Search string: %q", searchString)
	}
	return searchString, nil
}

// Prescribe extracts the first OCR line that mentions both a dosage
// term and a drug-form term.
func (s *RecognitionService) Prescribe(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", domain.ErrInvalidRequest
	}

	lines, err := s.recognizeLines(ctx, image)
	if err != nil {
		return "", err
	}

	texts := make([]string, 0, len(lines))
	for _, line := range lines {
		texts = append(texts, line.Text)
	}

	filtered := FilterPrescriptionLines(texts)
	if len(filtered) == 0 {
		return "", domain.ErrNoPrescriptionDetails
	}
	return filtered[0], nil
}

// FindProductByName fuzzy-matches a free-text name against the catalog
// and returns the full record of the accepted match.
func (s *RecognitionService) FindProductByName(ctx context.Context, name string) (*domain.Product, *domain.MatchResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil, domain.ErrInvalidRequest
	}

	result, err := s.matchCatalog(ctx, name)
	if err != nil {
		return nil, result, err
	}

	product, err := s.catalog.GetByName(ctx, result.MatchedName)
	if err != nil {
		return nil, result, err
	}

	return product, result, nil
}

// FindProductByID resolves a product identifier to its full record
func (s *RecognitionService) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	return s.catalog.GetByID(ctx, productID)
}

// matchCatalog fetches the name list fresh - never cached, so matches
// cannot run against a stale snapshot - and applies the acceptance
// policy to the best fuzzy match.
func (s *RecognitionService) matchCatalog(ctx context.Context, query string) (*domain.MatchResult, error) {
	entries, err := s.catalog.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.ProductName)
	}

	bestName, score := s.matcher.BestMatch(query, names)
	result := &domain.MatchResult{
		MatchedName: bestName,
		Score:       score,
		Accepted:    bestName != "" && s.matcher.Accepts(score),
	}

	if !result.Accepted {
		if bestName == "" {
			return result, domain.ErrProductNotFound
		}
		return result, domain.ErrLowConfidence
	}
	return result, nil
}

// recognizeLines runs OCR with a digest-keyed cache in front of the
// provider call.
func (s *RecognitionService) recognizeLines(ctx context.Context, image []byte) ([]domain.OcrLine, error) {
	key := imageCacheKey(image)

	if s.cache != nil {
		if lines, err := s.cache.Get(ctx, key); err == nil {
			return lines, nil
		}
	}

	lines, err := s.ocr.SubmitImage(ctx, image)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, lines, s.cacheTTL); err != nil {
			log.Printf("[OCR] Failed to cache result: %v", err)
		}
	}

	return lines, nil
}

// imageCacheKey derives the cache key from the image digest
func imageCacheKey(image []byte) string {
	sum := sha256.Sum256(image)
	return "ocr:" + hex.EncodeToString(sum[:])
}

// imageURL constructs the asset URL for a product identifier
func (s *RecognitionService) imageURL(productID string) string {
	if s.assetURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/images/%s.jpg", s.assetURL, productID)
}
