package vision

import "context"

// OCRMode selects the recognition effort level.
type OCRMode string

const (
	// OCRModeQuick favors latency over accuracy.
	OCRModeQuick OCRMode = "quick"
	// OCRModeThorough favors accuracy over latency.
	OCRModeThorough OCRMode = "thorough"
)

// Embedder generates feature vectors from image bytes.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedImage generates a unit-normalized feature vector for an image.
	// All vectors from one embedder share a fixed dimension.
	// Returns an error on malformed input.
	EmbedImage(ctx context.Context, image []byte) ([]float32, error)
}

// OCRProducer extracts text from image bytes.
// Implementations must be thread-safe for concurrent use.
type OCRProducer interface {
	// Recognize extracts text from an image. Internal recognition failures
	// degrade to an empty result rather than an error; only invalid input
	// is reported as an error.
	Recognize(ctx context.Context, image []byte, mode OCRMode) (*Result, error)

	// RecognizeFresh behaves like Recognize but bypasses any result cache.
	RecognizeFresh(ctx context.Context, image []byte, mode OCRMode) (*Result, error)
}

// Result is the OCR output for one image.
type Result struct {
	Text       string
	Confidence float64
	Words      []Word
}

// Word is a single recognized word.
type Word struct {
	Text       string
	Confidence float64
}

// Provider aggregates the vision services for convenient initialization and
// lifecycle management. A provider creates and owns Embedder and
// OCRProducer instances sharing configuration and resources.
type Provider interface {
	// Embedder returns the image embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// OCR returns the text recognition service.
	// The returned OCRProducer is safe for concurrent use.
	OCR() OCRProducer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
