package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pharmalens/backend/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	lines := []domain.OcrLine{
		{Text: "PANADOL 500MG TABLET", HeightPx: 40},
		{Text: "Batch 123", HeightPx: 10},
	}

	if err := cache.Set(ctx, "ocr:abc", lines, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "ocr:abc")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 || got[0].Text != "PANADOL 500MG TABLET" || got[1].HeightPx != 10 {
		t.Errorf("Get() = %v, want stored lines", got)
	}
}

func TestMemoryCache_Miss(t *testing.T) {
	cache := NewMemoryCache()

	_, err := cache.Get(context.Background(), "ocr:missing")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Expiration(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	lines := []domain.OcrLine{{Text: "expires-soon", HeightPx: 1}}
	if err := cache.Set(ctx, "ocr:short", lines, time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, "ocr:short")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after expiration error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	if err := cache.Set(ctx, "ocr:gone", []domain.OcrLine{{Text: "x"}}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cache.Delete(ctx, "ocr:gone"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, "ocr:gone"); err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCache_StoredCopyIsIsolated(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	lines := []domain.OcrLine{{Text: "original", HeightPx: 5}}
	if err := cache.Set(ctx, "ocr:copy", lines, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Mutating the caller's slice must not leak into the cache
	lines[0].Text = "mutated"

	got, err := cache.Get(ctx, "ocr:copy")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got[0].Text != "original" {
		t.Errorf("cached text = %q, want %q", got[0].Text, "original")
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	cache.Set(ctx, "a", nil, time.Minute)
	cache.Set(ctx, "b", nil, time.Minute)

	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}

	cache.Clear()

	if cache.Size() != 0 {
		t.Errorf("Size() after Clear = %d, want 0", cache.Size())
	}
}
