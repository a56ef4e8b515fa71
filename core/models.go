package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored images.
// It is generated by content-hashing the image bytes, so re-ingesting the
// same image produces the same ID.
type ID uint64

// IDFromContent generates a deterministic ID from raw content using BLAKE2b
// hashing. Identical content produces identical IDs.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Color is an RGB color value.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// VisualMetadata summarizes derived visual properties of an image.
// It is computed once at ingestion and never mutated afterwards.
// All scalar fields lie in [0, 1].
type VisualMetadata struct {
	DominantColors []Color // up to 5, most frequent first
	Brightness     float64
	Contrast       float64
	ColorEntropy   float64
	EdgeDensity    float64
}

// OCRWord is a single recognized word with its recognition confidence.
type OCRWord struct {
	Text       string
	Confidence float64
}

// OCRResult holds the text extracted from an image.
// A nil or empty result means no text was recognized.
type OCRResult struct {
	Text       string
	Confidence float64
	Words      []OCRWord
}

// HasText reports whether any text was recognized.
func (o *OCRResult) HasText() bool {
	return o != nil && o.Text != "" && len(o.Words) > 0
}

// WordCount returns the number of recognized words, 0 for a nil result.
func (o *OCRResult) WordCount() int {
	if o == nil {
		return 0
	}
	return len(o.Words)
}

// ImageRecord is a stored image with its derived features.
// Records are immutable once stored; a search treats fetched records as
// snapshots and never mutates them.
type ImageRecord struct {
	Id         ID
	Vector     []float32 // unit-normalized feature vector, fixed dimension
	Timestamp  time.Time // when the image was captured or added
	InsertedAt time.Time // when the record was inserted into the store
	Source     string    // origin of the image (file path, upload name)
	Metadata   *VisualMetadata
	OCR        *OCRResult
}

// MetricBreakdown holds the six per-signal similarity scores for one record.
// All scores are designed to lie in [0, 1].
type MetricBreakdown struct {
	Cosine      float64
	Euclidean   float64
	Manhattan   float64
	Color       float64
	VisualProps float64
	Text        float64
}

// Characteristics are classification flags derived from a record's metadata
// and OCR output. They steer the adaptive metric weighting.
type Characteristics struct {
	TextHeavy    bool
	Colorful     bool
	HighContrast bool
	Detailed     bool
}

// ScoredRecord is a per-search scoring result. It is never persisted.
type ScoredRecord struct {
	Record             *ImageRecord
	Similarity         float64
	Metrics            MetricBreakdown
	HasSignificantText bool
	Characteristics    Characteristics
}
