package similarity

import (
	"math"

	"github.com/halcyard/visimil/core"
)

// Weights is the normalized 6-way weight vector applied when fusing the
// component scores.
type Weights struct {
	Cosine      float64
	Euclidean   float64
	Manhattan   float64
	Color       float64
	VisualProps float64
	Text        float64
}

func baseWeights() Weights {
	return Weights{
		Cosine:      0.30,
		Euclidean:   0.25,
		Manhattan:   0.15,
		Color:       0.20,
		VisualProps: 0.05,
		Text:        0.05,
	}
}

// SelectWeights turns the record's characteristics and the raw component
// scores into a weight vector summing to 1.
//
// The adjustment steps are order-sensitive: the text rewrite replaces the
// base weights entirely, the characteristic boosts shift weight between
// signals, and the raw-score boosts amplify signals that already agree
// strongly. Normalization happens last.
func SelectWeights(ch core.Characteristics, metrics core.MetricBreakdown, hasSignificantText bool) Weights {
	w := baseWeights()

	if ch.TextHeavy || hasSignificantText {
		// Text weight scales with the text score itself, in [0.2, 0.5].
		tw := 0.2 + metrics.Text*0.3
		w = Weights{
			Cosine:      0.25 - tw*0.1,
			Euclidean:   0.2 - tw*0.05,
			Manhattan:   0.1,
			Color:       0.15,
			VisualProps: 0.05,
			Text:        tw,
		}
	}

	if ch.Colorful {
		w.Color = math.Min(0.3, w.Color*1.5)
		w.Cosine -= 0.05
	}

	if ch.Detailed {
		w.Cosine = math.Min(0.35, w.Cosine*1.2)
		w.Euclidean = math.Min(0.3, w.Euclidean*1.2)
		w.Color -= 0.05
	}

	if metrics.Cosine > 0.8 {
		w.Cosine = math.Min(0.4, w.Cosine*1.2)
	}

	if metrics.Color > 0.8 {
		w.Color = math.Min(0.3, w.Color*1.2)
	}

	return w.normalized()
}

// normalized scales the weights so they sum to exactly 1.
func (w Weights) normalized() Weights {
	sum := w.Cosine + w.Euclidean + w.Manhattan + w.Color + w.VisualProps + w.Text
	if sum == 0 {
		return w
	}
	return Weights{
		Cosine:      w.Cosine / sum,
		Euclidean:   w.Euclidean / sum,
		Manhattan:   w.Manhattan / sum,
		Color:       w.Color / sum,
		VisualProps: w.VisualProps / sum,
		Text:        w.Text / sum,
	}
}

// Sum returns the total of all six weights.
func (w Weights) Sum() float64 {
	return w.Cosine + w.Euclidean + w.Manhattan + w.Color + w.VisualProps + w.Text
}
