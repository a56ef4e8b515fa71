package similarity

import (
	"math"
	"strings"

	"github.com/halcyard/visimil/core"
	"github.com/xrash/smetrics"
)

// Weights of the three text sub-scores in TextSimilarity.
const (
	jaccardWeight = 0.5
	phraseWeight  = 0.3
	fuzzyWeight   = 0.2
)

const (
	minWordLength      = 2
	minFuzzyWordLength = 4
	fuzzyThreshold     = 0.75
	maxPhraseLength    = 6
)

// ocrConfusions maps characters that OCR engines commonly mistake for one
// another onto a canonical letter, so "he11o" and "hello" compare equal.
var ocrConfusions = strings.NewReplacer(
	"0", "o",
	"1", "l",
	"5", "s",
	"8", "b",
	"@", "a",
	"$", "s",
	"|", "l",
	"€", "e",
	"!", "i",
)

// stopWords get reduced importance; they carry little signal about whether
// two images show the same text.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"of": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "it": {}, "its": {},
	"this": {}, "that": {}, "with": {}, "as": {}, "by": {}, "be": {},
}

// wordStat aggregates the occurrences of one normalized word.
type wordStat struct {
	confidence float64 // highest confidence seen for this word
	count      int
}

// TextSimilarity computes the weighted similarity between two OCR outputs.
// Returns 0 if either side has no usable words. The result combines a
// weighted word-frequency Jaccard ratio, a phrase (n-gram) bonus, and a
// fuzzy edit-distance score.
//
// The fuzzy phase compares every word pair and is O(|a|*|b|); it is only
// acceptable because OCR word counts are small. Do not feed unbounded text
// through this function.
func TextSimilarity(a, b *core.OCRResult) float64 {
	if !a.HasText() || !b.HasText() {
		return 0
	}

	statsA, seqA := buildWordStats(a.Words)
	statsB, seqB := buildWordStats(b.Words)
	if len(statsA) == 0 || len(statsB) == 0 {
		return 0
	}

	jaccard := weightedJaccard(statsA, statsB)
	phrase := phraseBonus(seqA, seqB)
	fuzzy := fuzzyScore(statsA, statsB)

	return jaccardWeight*jaccard + phraseWeight*phrase + fuzzyWeight*fuzzy
}

// normalizeWord lowercases, trims and collapses whitespace, applies the OCR
// confusion substitutions, and strips everything outside [a-z0-9'&.-].
func normalizeWord(raw string) string {
	w := strings.ToLower(strings.TrimSpace(raw))
	w = strings.Join(strings.Fields(w), " ")
	w = ocrConfusions.Replace(w)

	var sb strings.Builder
	sb.Grow(len(w))
	for _, r := range w {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') ||
			r == '\'' || r == '&' || r == '.' || r == '-' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// buildWordStats normalizes the words and builds a frequency map plus the
// ordered sequence of surviving words for phrase matching. Words shorter
// than minWordLength are discarded.
func buildWordStats(words []core.OCRWord) (map[string]*wordStat, []string) {
	stats := make(map[string]*wordStat, len(words))
	seq := make([]string, 0, len(words))
	for _, w := range words {
		norm := normalizeWord(w.Text)
		if len(norm) < minWordLength {
			continue
		}
		seq = append(seq, norm)
		if s, ok := stats[norm]; ok {
			s.count++
			if w.Confidence > s.confidence {
				s.confidence = w.Confidence
			}
			continue
		}
		stats[norm] = &wordStat{confidence: w.Confidence, count: 1}
	}
	return stats, seq
}

// wordImportance weights a word by length, stop-word status and the
// presence of digits or punctuation (which tend to be distinctive).
func wordImportance(word string) float64 {
	importance := math.Min(1, float64(len(word))/5)
	if _, ok := stopWords[word]; ok {
		importance *= 0.3
	}
	if containsDigitOrPunct(word) {
		importance *= 1.2
	}
	return importance
}

func containsDigitOrPunct(word string) bool {
	for _, r := range word {
		if (r >= '0' && r <= '9') || r == '\'' || r == '&' || r == '.' || r == '-' {
			return true
		}
	}
	return false
}

// weightedJaccard computes the confidence- and importance-weighted Jaccard
// ratio of the two frequency maps.
func weightedJaccard(statsA, statsB map[string]*wordStat) float64 {
	var intersection, union float64
	for word, sa := range statsA {
		importance := wordImportance(word)
		union += sa.confidence * float64(sa.count) * importance
		if sb, ok := statsB[word]; ok {
			count := min(sa.count, sb.count)
			intersection += sa.confidence * sb.confidence * float64(count) * importance
		}
	}
	for word, sb := range statsB {
		if _, ok := statsA[word]; ok {
			continue
		}
		union += sb.confidence * float64(sb.count) * wordImportance(word)
	}
	if union == 0 {
		return 0
	}
	return intersection / union
}

// phraseBonus rewards shared word sequences. For each n-gram length from 2
// up to maxPhraseLength (bounded by the shorter text), every n-gram of b
// found among a's n-grams contributes 0.1*n, and the longest match adds a
// final 0.1*longest. Capped at 1.
func phraseBonus(seqA, seqB []string) float64 {
	maxN := min(maxPhraseLength, min(len(seqA), len(seqB)))
	if maxN < 2 {
		return 0
	}

	var total float64
	longest := 0
	for n := 2; n <= maxN; n++ {
		grams := make(map[string]struct{}, len(seqA)-n+1)
		for i := 0; i+n <= len(seqA); i++ {
			grams[strings.Join(seqA[i:i+n], " ")] = struct{}{}
		}
		for i := 0; i+n <= len(seqB); i++ {
			if _, ok := grams[strings.Join(seqB[i:i+n], " ")]; ok {
				total += 0.1 * float64(n)
				if n > longest {
					longest = n
				}
			}
		}
	}
	if longest == 0 {
		return 0
	}
	return math.Min(1, total+0.1*float64(longest))
}

// fuzzyScore rewards near-miss word pairs. Every pair of distinct words of
// length >= minFuzzyWordLength is compared by normalized Levenshtein
// distance; pairs above fuzzyThreshold accumulate weighted by confidence
// and importance. The total is normalized by the size of a's vocabulary and
// capped at 1.
func fuzzyScore(statsA, statsB map[string]*wordStat) float64 {
	var total float64
	for wa, sa := range statsA {
		if len(wa) < minFuzzyWordLength {
			continue
		}
		for wb, sb := range statsB {
			if len(wb) < minFuzzyWordLength || wa == wb {
				continue
			}
			sim := levenshteinSimilarity(wa, wb)
			if sim > fuzzyThreshold {
				total += sim * sa.confidence * sb.confidence * wordImportance(wa)
			}
		}
	}
	return math.Min(1, total/float64(len(statsA)))
}

// levenshteinSimilarity converts edit distance to a similarity in [0, 1].
func levenshteinSimilarity(a, b string) float64 {
	dist := smetrics.WagnerFischer(a, b, 1, 1, 1)
	longer := max(len(a), len(b))
	if longer == 0 {
		return 1
	}
	return 1 - float64(dist)/float64(longer)
}
