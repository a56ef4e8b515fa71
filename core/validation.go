// Copyright 2026 Halcyard Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// MaxDominantColors is the maximum number of dominant colors carried by
// VisualMetadata.
const MaxDominantColors = 5

// ValidateImageRecord validates an ImageRecord according to domain rules.
//
// Validation rules:
//   - Vector must not be empty
//   - Timestamp must not be in the future
//   - Metadata, when present, must pass ValidateVisualMetadata
//   - OCR, when present, must pass ValidateOCRResult
//
// NOT validated:
//   - ID (0 is valid; content IDs are assigned by the store)
//   - Vector normalization (the embedding producer guarantees it)
func ValidateImageRecord(record *ImageRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidImageRecord)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrEmptyVector)
	}

	if !IsValidTimestamp(record.Timestamp) {
		return fmt.Errorf("%w: %w", ErrInvalidImageRecord, ErrInvalidTimestamp)
	}

	if record.Metadata != nil {
		if err := ValidateVisualMetadata(record.Metadata); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidImageRecord, err)
		}
	}

	if record.OCR != nil {
		if err := ValidateOCRResult(record.OCR); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidImageRecord, err)
		}
	}

	return nil
}

// ValidateVisualMetadata validates derived visual properties.
func ValidateVisualMetadata(meta *VisualMetadata) error {
	if len(meta.DominantColors) > MaxDominantColors {
		return fmt.Errorf("%w: got %d, max %d", ErrTooManyColors, len(meta.DominantColors), MaxDominantColors)
	}
	for name, v := range map[string]float64{
		"brightness":   meta.Brightness,
		"contrast":     meta.Contrast,
		"colorEntropy": meta.ColorEntropy,
		"edgeDensity":  meta.EdgeDensity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s = %v", ErrMetadataOutOfRange, name, v)
		}
	}
	return nil
}

// ValidateOCRResult validates OCR output confidences.
func ValidateOCRResult(ocr *OCRResult) error {
	if ocr.Confidence < 0 || ocr.Confidence > 1 {
		return fmt.Errorf("%w: overall confidence = %v", ErrConfidenceOutOfRange, ocr.Confidence)
	}
	for _, w := range ocr.Words {
		if w.Confidence < 0 || w.Confidence > 1 {
			return fmt.Errorf("%w: word %q confidence = %v", ErrConfidenceOutOfRange, w.Text, w.Confidence)
		}
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
