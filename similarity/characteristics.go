package similarity

import "github.com/halcyard/visimil/core"

// Classification thresholds.
const (
	textHeavyMinWords      = 5
	textHeavyMinConfidence = 0.6
	colorfulMinEntropy     = 0.7
	highContrastMin        = 0.6
	detailedMinEdgeDensity = 0.5
)

// Classify derives characteristic flags from a record's metadata and OCR
// output. Missing metadata or OCR leaves the corresponding flags false.
func Classify(meta *core.VisualMetadata, ocr *core.OCRResult) core.Characteristics {
	var ch core.Characteristics
	if ocr.HasText() && ocr.WordCount() > textHeavyMinWords && ocr.Confidence > textHeavyMinConfidence {
		ch.TextHeavy = true
	}
	if meta != nil {
		ch.Colorful = meta.ColorEntropy > colorfulMinEntropy
		ch.HighContrast = meta.Contrast > highContrastMin
		ch.Detailed = meta.EdgeDensity > detailedMinEdgeDensity
	}
	return ch
}
