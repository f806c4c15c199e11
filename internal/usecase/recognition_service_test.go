package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pharmalens/backend/internal/domain"
)

type fakeOCR struct {
	lines []domain.OcrLine
	err   error
	calls int
}

func (f *fakeOCR) SubmitImage(ctx context.Context, image []byte) ([]domain.OcrLine, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.lines, nil
}

type fakeCatalog struct {
	entries  []domain.ProductNameEntry
	products map[string]*domain.Product
	listErr  error
}

func (f *fakeCatalog) ListNames(ctx context.Context) ([]domain.ProductNameEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeCatalog) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	product, ok := f.products[name]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (f *fakeCatalog) GetByID(ctx context.Context, productID string) (*domain.Product, error) {
	for _, product := range f.products {
		if product.ProductID == productID {
			copied := *product
			return &copied, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

type fakeCache struct {
	data map[string][]domain.OcrLine
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]domain.OcrLine)}
}

func (f *fakeCache) Get(ctx context.Context, key string) ([]domain.OcrLine, error) {
	lines, ok := f.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return lines, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, lines []domain.OcrLine, ttl time.Duration) error {
	f.data[key] = lines
	return nil
}

type fakeModel struct {
	available bool
}

func (f *fakeModel) Available() bool { return f.available }

func panadolCatalog() *fakeCatalog {
	return &fakeCatalog{
		entries: []domain.ProductNameEntry{
			{ProductName: "Panadol", ProductID: "P-001"},
			{ProductName: "Aspirin", ProductID: "P-002"},
			{ProductName: "Ibuprofen", ProductID: "P-003"},
		},
		products: map[string]*domain.Product{
			"Panadol": {ID: 1, ProductID: "P-001", ProductName: "Panadol", BrandName: "GSK", Price: 4.5, Stock: 20},
			"Aspirin": {ID: 2, ProductID: "P-002", ProductName: "Aspirin", BrandName: "Bayer", Price: 3.0, Stock: 15},
		},
	}
}

func newTestService(ocr *fakeOCR, catalog *fakeCatalog, model ModelGuard) *RecognitionService {
	return NewRecognitionService(ocr, catalog, newFakeCache(), model, RecognitionConfig{
		AssetBaseURL: "https://assets.example.com",
	})
}

func TestPredict(t *testing.T) {
	ctx := context.Background()

	t.Run("identifies product from package photo", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{
			{Text: "PANADOL 500MG TABLET", HeightPx: 40},
			{Text: "Batch 123", HeightPx: 10},
		}}
		svc := newTestService(ocr, panadolCatalog(), nil)

		product, result, err := svc.Predict(ctx, []byte("photo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if product.ProductName != "Panadol" {
			t.Errorf("ProductName = %q, want Panadol", product.ProductName)
		}
		if result.Score <= 70 {
			t.Errorf("Score = %d, want > 70", result.Score)
		}
		if !result.Accepted {
			t.Error("Accepted = false, want true")
		}
		if product.Image != "https://assets.example.com/images/P-001.jpg" {
			t.Errorf("Image = %q, want constructed asset URL", product.Image)
		}
	})

	t.Run("unrelated text reports no match", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{
			{Text: "zzz completely unrelated", HeightPx: 30},
		}}
		svc := newTestService(ocr, panadolCatalog(), nil)

		_, result, err := svc.Predict(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrLowConfidence) {
			t.Errorf("error = %v, want ErrLowConfidence", err)
		}
		if result == nil || result.Accepted {
			t.Errorf("result = %+v, want rejected match", result)
		}
	})

	t.Run("empty OCR output is a no-match, not an error", func(t *testing.T) {
		ocr := &fakeOCR{}
		svc := newTestService(ocr, panadolCatalog(), nil)

		_, _, err := svc.Predict(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("empty catalog is a no-match, not an error", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{{Text: "Panadol", HeightPx: 20}}}
		svc := newTestService(ocr, &fakeCatalog{}, nil)

		_, _, err := svc.Predict(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrProductNotFound) {
			t.Errorf("error = %v, want ErrProductNotFound", err)
		}
	})

	t.Run("missing image is invalid input", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), nil)

		_, _, err := svc.Predict(ctx, nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})

	t.Run("OCR provider failure propagates", func(t *testing.T) {
		ocr := &fakeOCR{err: domain.ErrOCRProviderFailure}
		svc := newTestService(ocr, panadolCatalog(), nil)

		_, _, err := svc.Predict(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrOCRProviderFailure) {
			t.Errorf("error = %v, want ErrOCRProviderFailure", err)
		}
	})

	t.Run("repeat image served from OCR cache", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{{Text: "PANADOL 500MG TABLET", HeightPx: 40}}}
		svc := newTestService(ocr, panadolCatalog(), nil)

		if _, _, err := svc.Predict(ctx, []byte("same-photo")); err != nil {
			t.Fatalf("first predict: %v", err)
		}
		if _, _, err := svc.Predict(ctx, []byte("same-photo")); err != nil {
			t.Fatalf("second predict: %v", err)
		}
		if ocr.calls != 1 {
			t.Errorf("OCR provider calls = %d, want 1 (second request cached)", ocr.calls)
		}
	})
}

func TestPredictMobile(t *testing.T) {
	ctx := context.Background()

	t.Run("returns raw search string without catalog lookup", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{
			{Text: "PANADOL 500MG TABLET", HeightPx: 40},
			{Text: "Batch 123", HeightPx: 10},
		}}
		// Catalog that would fail if consulted
		catalog := &fakeCatalog{listErr: domain.ErrCatalogUnavailable}
		svc := newTestService(ocr, catalog, &fakeModel{available: true})

		predicted, err := svc.PredictMobile(ctx, []byte("photo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if predicted != "PANADOL 500MG TABLET Batch 123" {
			t.Errorf("predicted = %q, want ranked search string", predicted)
		}
	})

	t.Run("refuses when model is unavailable", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), &fakeModel{available: false})

		_, err := svc.PredictMobile(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrModelUnavailable) {
			t.Errorf("error = %v, want ErrModelUnavailable", err)
		}
	})

	t.Run("refuses when model was never loaded", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), nil)

		_, err := svc.PredictMobile(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrModelUnavailable) {
			t.Errorf("error = %v, want ErrModelUnavailable", err)
		}
	})
}

func TestPrescribe(t *testing.T) {
	ctx := context.Background()

	t.Run("returns first qualifying line", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{
			{Text: "Dr. Smith", HeightPx: 12},
			{Text: "Amoxicillin 250mg capsule", HeightPx: 10},
			{Text: "Paracetamol 500mg tablet", HeightPx: 10},
		}}
		svc := newTestService(ocr, panadolCatalog(), nil)

		line, err := svc.Prescribe(ctx, []byte("photo"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if line != "Amoxicillin 250mg capsule" {
			t.Errorf("line = %q, want first qualifying line", line)
		}
	})

	t.Run("explicit error when nothing qualifies", func(t *testing.T) {
		ocr := &fakeOCR{lines: []domain.OcrLine{{Text: "Dr. Smith", HeightPx: 12}}}
		svc := newTestService(ocr, panadolCatalog(), nil)

		_, err := svc.Prescribe(ctx, []byte("photo"))
		if !errors.Is(err, domain.ErrNoPrescriptionDetails) {
			t.Errorf("error = %v, want ErrNoPrescriptionDetails", err)
		}
	})
}

func TestFindProductByName(t *testing.T) {
	ctx := context.Background()

	t.Run("fuzzy name resolves to record", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), nil)

		product, result, err := svc.FindProductByName(ctx, "panadol 500mg tablet")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if product.ProductID != "P-001" {
			t.Errorf("ProductID = %q, want P-001", product.ProductID)
		}
		if !result.Accepted {
			t.Error("Accepted = false, want true")
		}
	})

	t.Run("below-threshold name is not found", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), nil)

		_, _, err := svc.FindProductByName(ctx, "zzz completely unrelated")
		if !errors.Is(err, domain.ErrLowConfidence) {
			t.Errorf("error = %v, want ErrLowConfidence", err)
		}
	})

	t.Run("blank name is invalid input", func(t *testing.T) {
		svc := newTestService(&fakeOCR{}, panadolCatalog(), nil)

		_, _, err := svc.FindProductByName(ctx, "  ")
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("error = %v, want ErrInvalidRequest", err)
		}
	})
}
