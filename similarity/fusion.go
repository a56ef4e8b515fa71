package similarity

import "github.com/halcyard/visimil/core"

// Penalty factors applied when individual signals strongly disagree.
// All applicable factors compound.
const (
	vectorDisagreementPenalty = 0.8  // both cosine and euclidean are weak
	colorDisagreementPenalty  = 0.9  // color signal is weak
	textDisagreementPenalty   = 0.85 // both sides have text but it doesn't match
)

// significantText requires both sides to carry more than this many words.
const significantTextMinWords = 3

// Query is the feature bundle compared against every stored record.
// Metadata and OCR are optional; missing signals degrade to their neutral
// values during scoring.
type Query struct {
	Vector   []float32
	Metadata *core.VisualMetadata
	OCR      *core.OCRResult
}

// ScoreRecord computes the six component scores for one record, classifies
// its characteristics, selects adaptive weights and fuses everything into a
// single combined similarity. The record is not mutated.
//
// Returns core.ErrDimensionMismatch if the record's vector length differs
// from the query's.
func ScoreRecord(q Query, record *core.ImageRecord) (*core.ScoredRecord, error) {
	cosine, err := Cosine(q.Vector, record.Vector)
	if err != nil {
		return nil, err
	}
	euclidean, err := EuclideanSimilarity(q.Vector, record.Vector)
	if err != nil {
		return nil, err
	}
	manhattan, err := ManhattanSimilarity(q.Vector, record.Vector)
	if err != nil {
		return nil, err
	}

	colorScore := ColorSimilarity(dominantColors(q.Metadata), dominantColors(record.Metadata))
	visualScore := VisualPropertiesSimilarity(q.Metadata, record.Metadata)
	textScore := TextSimilarity(q.OCR, record.OCR)

	metrics := core.MetricBreakdown{
		Cosine:      cosine,
		Euclidean:   euclidean,
		Manhattan:   manhattan,
		Color:       colorScore,
		VisualProps: visualScore,
		Text:        textScore,
	}

	hasSignificantText := q.OCR.WordCount() > significantTextMinWords &&
		record.OCR.WordCount() > significantTextMinWords &&
		textScore > 0.2

	ch := Classify(record.Metadata, record.OCR)
	w := SelectWeights(ch, metrics, hasSignificantText)

	combined := cosine*w.Cosine +
		euclidean*w.Euclidean +
		manhattan*w.Manhattan +
		colorScore*w.Color +
		visualScore*w.VisualProps +
		textScore*w.Text

	penalty := 1.0
	if cosine < 0.4 && euclidean < 0.4 {
		penalty *= vectorDisagreementPenalty
	}
	if colorScore < 0.3 {
		penalty *= colorDisagreementPenalty
	}
	if hasSignificantText && textScore < 0.2 {
		penalty *= textDisagreementPenalty
	}

	return &core.ScoredRecord{
		Record:             record,
		Similarity:         combined * penalty,
		Metrics:            metrics,
		HasSignificantText: hasSignificantText,
		Characteristics:    ch,
	}, nil
}

func dominantColors(meta *core.VisualMetadata) []core.Color {
	if meta == nil {
		return nil
	}
	return meta.DominantColors
}
