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


// Package similarity implements the multi-signal scoring pipeline of visimil.
//
// A query is compared against a stored record with six independent metrics:
// three vector metrics (cosine, euclidean, manhattan) over the feature
// vectors, two visual metrics (dominant colors, visual properties) over the
// derived metadata, and a text metric over the OCR output. The record's
// characteristics (text-heavy, colorful, high-contrast, detailed) select
// adaptive weights, and the weighted sum is dampened by penalty factors when
// individual signals strongly disagree.
//
// Over a scored batch, Analyze computes the score distribution and
// SelectThreshold derives an adaptive cutoff separating relevant from
// irrelevant matches.
//
// All functions here are pure: they never mutate their inputs, so records
// can be scored concurrently without locking.
package similarity
