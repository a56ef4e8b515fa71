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

// Package analysis derives visual metadata from raw image bytes.
//
// The derivation is pure and deterministic: an image decodes into a pixel
// buffer, and the buffer reduces to dominant colors, brightness, contrast,
// color entropy and edge density, all normalized to [0,1]. Large images are
// subsampled on a fixed grid so analysis cost stays bounded regardless of
// resolution.
package analysis
