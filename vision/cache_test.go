package vision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCachePutGet(t *testing.T) {
	cache, err := NewResultCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	image := []byte("fake image bytes")
	result := &Result{
		Text:       "exit",
		Confidence: 0.9,
		Words:      []Word{{Text: "exit", Confidence: 0.9}},
	}

	_, ok := cache.Get(image, OCRModeQuick)
	assert.False(t, ok)

	cache.Put(image, OCRModeQuick, result)
	cache.Wait()

	cached, ok := cache.Get(image, OCRModeQuick)
	require.True(t, ok)
	assert.Equal(t, "exit", cached.Text)
	assert.Equal(t, 0.9, cached.Confidence)
}

func TestResultCacheKeyedByMode(t *testing.T) {
	cache, err := NewResultCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	image := []byte("the same image")
	cache.Put(image, OCRModeQuick, &Result{Text: "quick pass"})
	cache.Put(image, OCRModeThorough, &Result{Text: "thorough pass"})
	cache.Wait()

	quick, ok := cache.Get(image, OCRModeQuick)
	require.True(t, ok)
	assert.Equal(t, "quick pass", quick.Text)

	thorough, ok := cache.Get(image, OCRModeThorough)
	require.True(t, ok)
	assert.Equal(t, "thorough pass", thorough.Text)
}

func TestResultCacheKeyedByContent(t *testing.T) {
	cache, err := NewResultCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	cache.Put([]byte("image one"), OCRModeQuick, &Result{Text: "one"})
	cache.Wait()

	_, ok := cache.Get([]byte("image two"), OCRModeQuick)
	assert.False(t, ok)
}

func TestNewResultCacheDefaultTTL(t *testing.T) {
	cache, err := NewResultCache(0)
	require.NoError(t, err)
	defer cache.Close()
	assert.Equal(t, DefaultOCRCacheTTL, cache.ttl)
}
