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

import "errors"

// Domain validation errors
var (
	// ErrInvalidImageRecord indicates an ImageRecord failed validation.
	ErrInvalidImageRecord = errors.New("invalid image record")

	// ErrDimensionMismatch indicates two feature vectors differ in length.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

	// ErrEmptyVector indicates a record has no feature vector.
	ErrEmptyVector = errors.New("feature vector cannot be empty")

	// ErrInvalidTimestamp indicates a timestamp is in the future.
	ErrInvalidTimestamp = errors.New("timestamp cannot be in the future")

	// ErrConfidenceOutOfRange indicates an OCR confidence outside [0, 1].
	ErrConfidenceOutOfRange = errors.New("confidence must be in [0, 1]")

	// ErrMetadataOutOfRange indicates a visual property outside [0, 1].
	ErrMetadataOutOfRange = errors.New("visual property must be in [0, 1]")

	// ErrTooManyColors indicates more dominant colors than allowed.
	ErrTooManyColors = errors.New("too many dominant colors")
)
