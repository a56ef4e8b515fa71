package vision

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
)

const (
	// ocrCacheMaxEntries bounds the number of cached OCR results.
	ocrCacheMaxEntries = 4096
	// ocrCacheCounters sizes the admission counters (10x max entries).
	ocrCacheCounters = 10 * ocrCacheMaxEntries
)

// ResultCache caches OCR results with TTL eviction, keyed by a content hash
// of the image bytes plus the recognition mode. Hashing the full content
// avoids the collisions a prefix-based key would allow.
type ResultCache struct {
	cache *ristretto.Cache[string, *Result]
	ttl   time.Duration
}

// NewResultCache creates a cache with the given entry lifetime.
// A non-positive ttl falls back to DefaultOCRCacheTTL.
func NewResultCache(ttl time.Duration) (*ResultCache, error) {
	if ttl <= 0 {
		ttl = DefaultOCRCacheTTL
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, *Result]{
		NumCounters: ocrCacheCounters,
		MaxCost:     ocrCacheMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ResultCache{cache: cache, ttl: ttl}, nil
}

// Get returns the cached result for an image and mode, if present.
func (c *ResultCache) Get(image []byte, mode OCRMode) (*Result, bool) {
	return c.cache.Get(cacheKey(image, mode))
}

// Put stores a result for an image and mode.
func (c *ResultCache) Put(image []byte, mode OCRMode, result *Result) {
	c.cache.SetWithTTL(cacheKey(image, mode), result, 1, c.ttl)
}

// Wait blocks until pending writes are applied. Intended for tests.
func (c *ResultCache) Wait() {
	c.cache.Wait()
}

// Close releases the cache resources.
func (c *ResultCache) Close() {
	c.cache.Close()
}

// cacheKey derives the cache key from a BLAKE2b hash of the image content
// and the recognition mode.
func cacheKey(image []byte, mode OCRMode) string {
	h, _ := blake2b.New(16, nil)
	h.Write(image)
	return fmt.Sprintf("%s:%s", mode, hex.EncodeToString(h.Sum(nil)))
}
