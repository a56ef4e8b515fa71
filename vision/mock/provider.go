package mock

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/halcyard/visimil/vision"
)

// DefaultDimension is the vector dimension of the default mock embedder.
const DefaultDimension = 64

// MockEmbedder is a test double for vision.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedImageFunc is called by EmbedImage if set.
	// If nil, uses default deterministic behavior.
	EmbedImageFunc func(ctx context.Context, image []byte) ([]float32, error)

	// Dimension of the default deterministic vectors.
	Dimension int

	callCount int
}

var _ vision.Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder creates a mock embedder with default deterministic
// behavior. Returns the concrete type to allow test assertions.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{Dimension: DefaultDimension}
}

// EmbedImage generates a deterministic unit vector based on a content hash.
func (m *MockEmbedder) EmbedImage(ctx context.Context, image []byte) ([]float32, error) {
	m.callCount++

	if m.EmbedImageFunc != nil {
		return m.EmbedImageFunc(ctx, image)
	}
	if len(image) == 0 {
		return nil, vision.ErrEmptyImage
	}

	dim := m.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}
	return generateDeterministicVector(image, dim), nil
}

// CallCount returns the number of times EmbedImage was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// MockOCR is a test double for vision.OCRProducer.
type MockOCR struct {
	// RecognizeFunc is called by Recognize and RecognizeFresh if set.
	// If nil, returns an empty result.
	RecognizeFunc func(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error)

	callCount  int
	freshCount int
}

var _ vision.OCRProducer = (*MockOCR)(nil)

// NewMockOCR creates a mock OCR producer that recognizes nothing.
func NewMockOCR() *MockOCR {
	return &MockOCR{}
}

// Recognize returns the configured result or an empty one.
func (m *MockOCR) Recognize(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
	m.callCount++
	if len(image) == 0 {
		return nil, vision.ErrEmptyImage
	}
	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, image, mode)
	}
	return &vision.Result{}, nil
}

// RecognizeFresh behaves like Recognize; the mock holds no cache.
func (m *MockOCR) RecognizeFresh(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
	m.freshCount++
	return m.Recognize(ctx, image, mode)
}

// CallCount returns the number of times Recognize was called.
func (m *MockOCR) CallCount() int {
	return m.callCount
}

// FreshCount returns the number of cache-bypassing calls.
func (m *MockOCR) FreshCount() int {
	return m.freshCount
}

// MockProvider bundles the mock services.
type MockProvider struct {
	MockEmbedder *MockEmbedder
	MockOCR      *MockOCR
}

var _ vision.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockEmbedder: NewMockEmbedder(),
		MockOCR:      NewMockOCR(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() vision.Embedder {
	return p.MockEmbedder
}

// OCR returns the mock OCR producer.
func (p *MockProvider) OCR() vision.OCRProducer {
	return p.MockOCR
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// generateDeterministicVector creates a deterministic unit vector from
// content. It uses FNV hashing so the same bytes always produce the same
// vector.
func generateDeterministicVector(content []byte, dim int) []float32 {
	h := fnv.New32a()
	h.Write(content)
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// Simple pseudo-random generation based on seed and index
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}

	// Normalize to unit vector
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}

	return vector
}
