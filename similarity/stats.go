package similarity

import (
	"math"
	"sort"
)

// maxTrackedGaps is how many of the largest score gaps Analyze reports.
const maxTrackedGaps = 3

// Gap is a drop between two consecutive scores in a descending-sorted batch.
// Index is the position of the higher score; the gap lies between Index and
// Index+1.
type Gap struct {
	Index int
	Size  float64
}

// Distribution summarizes the similarity scores of one scored batch.
// Quartiles are taken positionally from the descending-sorted scores, so Q1
// is the high quartile and Q3 the low one.
type Distribution struct {
	Mean    float64
	StdDev  float64
	Median  float64
	Q1      float64
	Q3      float64
	TopGaps []Gap // largest first, up to maxTrackedGaps
}

// Analyze computes the score distribution of a batch.
// scores must already be sorted in descending order; an empty batch yields a
// zero Distribution.
func Analyze(scores []float64) Distribution {
	n := len(scores)
	if n == 0 {
		return Distribution{}
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	mean := sum / float64(n)

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	variance /= float64(n) // population variance

	gaps := make([]Gap, 0, n-1)
	for i := 0; i < n-1; i++ {
		gaps = append(gaps, Gap{Index: i, Size: scores[i] - scores[i+1]})
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].Size != gaps[j].Size {
			return gaps[i].Size > gaps[j].Size
		}
		return gaps[i].Index < gaps[j].Index
	})
	if len(gaps) > maxTrackedGaps {
		gaps = gaps[:maxTrackedGaps]
	}

	return Distribution{
		Mean:    mean,
		StdDev:  math.Sqrt(variance),
		Median:  scores[n/2],
		Q1:      scores[n/4],
		Q3:      scores[3*n/4],
		TopGaps: gaps,
	}
}
