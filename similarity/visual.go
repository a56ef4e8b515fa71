package similarity

import (
	"math"

	"github.com/halcyard/visimil/core"
)

// maxRGBDistance is the euclidean distance between opposite corners of the
// RGB cube, sqrt(3 * 255^2).
const maxRGBDistance = 441.67

// Weights of the individual visual properties in VisualPropertiesSimilarity.
const (
	brightnessWeight = 0.3
	contrastWeight   = 0.2
	entropyWeight    = 0.25
	edgeWeight       = 0.25
)

// ColorSimilarity compares two dominant-color lists.
// Returns the neutral value 0.5 if either list is empty. Otherwise, for each
// of a's top 3 colors the nearest color in b is found by RGB distance, and
// the per-color similarities are averaged.
func ColorSimilarity(a, b []core.Color) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.5
	}

	top := a
	if len(top) > 3 {
		top = top[:3]
	}

	var total float64
	for _, ca := range top {
		nearest := math.MaxFloat64
		for _, cb := range b {
			if d := rgbDistance(ca, cb); d < nearest {
				nearest = d
			}
		}
		total += 1 - nearest/maxRGBDistance
	}
	return total / float64(len(top))
}

// VisualPropertiesSimilarity compares brightness, contrast, color entropy
// and edge density between two metadata summaries. Each term contributes
// 1-|diff| weighted by its share; if either side is missing the comparison
// degrades to the neutral value 0.5.
func VisualPropertiesSimilarity(a, b *core.VisualMetadata) float64 {
	if a == nil || b == nil {
		return 0.5
	}
	return brightnessWeight*(1-math.Abs(a.Brightness-b.Brightness)) +
		contrastWeight*(1-math.Abs(a.Contrast-b.Contrast)) +
		entropyWeight*(1-math.Abs(a.ColorEntropy-b.ColorEntropy)) +
		edgeWeight*(1-math.Abs(a.EdgeDensity-b.EdgeDensity))
}

func rgbDistance(a, b core.Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
