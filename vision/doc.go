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


// Package vision defines the interfaces for the external feature producers
// the engine depends on: image embedding and optical text recognition.
//
// The engine itself never touches raw pixels for feature extraction; it
// consumes vectors and OCR results through these interfaces. The openai
// subpackage implements them against OpenAI-compatible endpoints, and the
// mock subpackage provides deterministic test doubles.
//
// Providers own their services' lifecycle: create one with a Config, use it
// for the life of the engine, and Close it on shutdown. Multiple providers
// can coexist independently, which keeps engine instances isolated under
// test.
package vision
