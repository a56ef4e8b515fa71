package similarity

import (
	"math"

	"github.com/halcyard/visimil/core"
)

// Threshold bounds and heuristics.
const (
	baseThreshold = 0.45
	minThreshold  = 0.4
	maxThreshold  = 0.85

	// significantGap is the minimum score drop treated as a natural break
	// between relevant and irrelevant results.
	significantGap = 0.1

	// quartileSpread is the minimum Q1-Q3 spread indicating a wide, noisy
	// score distribution.
	quartileSpread = 0.2

	// dominantTopScore and dominantTopLead detect a single clear winner far
	// ahead of the runner-up.
	dominantTopScore = 0.8
	dominantTopLead  = 0.2

	// strongTextMatch relaxes the threshold when text evidence is strong.
	strongTextMatch = 0.5
)

// SelectThreshold derives the adaptive cutoff for a scored batch.
// results must be sorted by similarity in descending order; dist must come
// from Analyze over the same scores. The heuristics only engage with at
// least 3 results, and the returned value always lies in
// [minThreshold, maxThreshold].
func SelectThreshold(results []*core.ScoredRecord, dist Distribution) float64 {
	threshold := baseThreshold

	if len(results) >= 3 {
		// A large gap in the sorted scores is a natural cutoff point; place
		// the threshold in the middle of it.
		if len(dist.TopGaps) > 0 && dist.TopGaps[0].Size > significantGap {
			i := dist.TopGaps[0].Index
			threshold = (results[i].Similarity + results[i+1].Similarity) / 2
		}

		// A wide spread between the high and low quartiles means the tail is
		// mostly noise; cut at the low quartile if that raises the bar.
		if dist.Q1-dist.Q3 > quartileSpread && dist.Q3 > threshold {
			threshold = dist.Q3
		}

		// A single dominant result makes everything far below it irrelevant.
		top := results[0].Similarity
		second := results[1].Similarity
		if top > dominantTopScore && top-second > dominantTopLead {
			threshold = top * 0.8
		}

		// Strong text evidence justifies keeping weaker visual matches.
		for _, r := range results {
			if r.Metrics.Text > strongTextMatch {
				threshold = math.Max(minThreshold, threshold*0.9)
				break
			}
		}
	}

	if threshold < minThreshold {
		return minThreshold
	}
	if threshold > maxThreshold {
		return maxThreshold
	}
	return threshold
}
