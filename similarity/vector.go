package similarity

import (
	"fmt"
	"math"

	"github.com/halcyard/visimil/core"
)

// Cosine returns the cosine similarity between two feature vectors.
// Returns 0 if either vector has zero norm.
// Returns core.ErrDimensionMismatch if the vectors differ in length.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// EuclideanSimilarity converts euclidean distance to a similarity in [0, 1].
// Inputs are unit vectors, so the distance is at most sqrt(2) and the
// similarity is 1 - dist/sqrt(2).
func EuclideanSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return clamp01(1 - math.Sqrt(sum)/math.Sqrt2), nil
}

// ManhattanSimilarity converts manhattan distance to a similarity in [0, 1]
// by normalizing against the maximum possible distance 2L for unit vectors
// of length L.
func ManhattanSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", core.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a {
		sum += math.Abs(float64(a[i]) - float64(b[i]))
	}
	return clamp01(1 - sum/(2*float64(len(a)))), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
