// Copyright 2026 Halcyard Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ingestion turns raw image bytes into stored, fully enriched
// records.
//
// For each image the pipeline decodes the pixels, derives visual metadata,
// generates a feature vector and recognizes text, then validates and
// persists the record. Batches fan out over a worker pool; a failed image
// is logged and skipped without failing the rest of the batch.
package ingestion
