package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pharmalens/backend/internal/domain"
)

// cacheItem holds one OCR result with its expiration
type cacheItem struct {
	Lines      []domain.OcrLine
	Expiration time.Time
}

// MemoryCache is a thread-safe in-memory cache for OCR results with TTL
// support. Keys are image digests; identical bytes always OCR to the
// same lines, so a hit skips the rate-limited provider call entirely.
type MemoryCache struct {
	data  map[string]cacheItem
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory OCR result cache
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		data: make(map[string]cacheItem),
	}

	// Start cleanup goroutine to remove expired entries every 10 minutes
	go cache.cleanupExpired()

	return cache
}

// Get retrieves cached OCR lines for an image digest
func (c *MemoryCache) Get(ctx context.Context, key string) ([]domain.OcrLine, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists {
		return nil, domain.ErrCacheMiss
	}

	// Check if expired
	if time.Now().After(item.Expiration) {
		return nil, domain.ErrCacheMiss
	}

	return item.Lines, nil
}

// Set stores OCR lines for an image digest with TTL
func (c *MemoryCache) Set(ctx context.Context, key string, lines []domain.OcrLine, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// Copy so later caller mutations never leak into the cache
	stored := make([]domain.OcrLine, len(lines))
	copy(stored, lines)

	c.data[key] = cacheItem{
		Lines:      stored,
		Expiration: time.Now().Add(ttl),
	}

	return nil
}

// Delete removes a cached result
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mutex.Lock()
		now := time.Now()
		for key, item := range c.data {
			if now.After(item.Expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}

// Size returns the current number of items in the cache (for debugging/monitoring)
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.data)
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.data = make(map[string]cacheItem)
}
