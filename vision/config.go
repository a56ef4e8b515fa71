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

package vision

import (
	"errors"
	"strings"
	"time"
)

// Configuration errors
var (
	// ErrEmbeddingHostRequired indicates a missing embedding host URL.
	ErrEmbeddingHostRequired = errors.New("embedding host is required")

	// ErrEmbeddingModelRequired indicates a missing embedding model name.
	ErrEmbeddingModelRequired = errors.New("embedding model is required")

	// ErrOCRHostRequired indicates a missing OCR host URL.
	ErrOCRHostRequired = errors.New("ocr host is required")

	// ErrOCRModelRequired indicates a missing OCR model name.
	ErrOCRModelRequired = errors.New("ocr model is required")

	// ErrEmptyImage indicates an empty image payload.
	ErrEmptyImage = errors.New("image data is empty")
)

// DefaultOCRCacheTTL is how long cached OCR results stay valid.
const DefaultOCRCacheTTL = 30 * time.Minute

// Config holds configuration for vision service providers.
type Config struct {
	// EmbeddingHost is the base URL for the image embedding service API.
	// Example: "http://localhost:7997/v1" for a local CLIP-style
	// OpenAI-compatible embedding server
	EmbeddingHost string

	// EmbeddingModel is the model identifier for image embeddings.
	// Example: "clip-vit-b-32", "jina-clip-v2"
	EmbeddingModel string

	// OCRHost is the base URL for the text recognition service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible
	// server running a vision model
	OCRHost string

	// OCRModel is the model identifier for text recognition.
	// Example: "llama3.2-vision", "qwen2.5-vl:7b"
	OCRModel string

	// OCRCacheTTL is how long OCR results are cached.
	// Default: DefaultOCRCacheTTL
	OCRCacheTTL time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithOCRHost sets the OCR service host URL.
func WithOCRHost(host string) ConfigOption {
	return func(c *Config) {
		c.OCRHost = host
	}
}

// WithOCRModel sets the OCR model identifier.
func WithOCRModel(model string) ConfigOption {
	return func(c *Config) {
		c.OCRModel = model
	}
}

// WithHost sets both embedding and OCR hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.OCRHost = host
	}
}

// WithOCRCacheTTL sets the OCR result cache lifetime.
func WithOCRCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		if ttl > 0 {
			c.OCRCacheTTL = ttl
		}
	}
}

// NewConfig creates a configuration from options.
func NewConfig(opts ...ConfigOption) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DefaultConfig returns a configuration with local-service defaults.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  "http://localhost:7997/v1",
		EmbeddingModel: "clip-vit-b-32",
		OCRHost:        "http://localhost:11434/v1",
		OCRModel:       "llama3.2-vision",
		OCRCacheTTL:    DefaultOCRCacheTTL,
	}
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.EmbeddingHost) == "" {
		return ErrEmbeddingHostRequired
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return ErrEmbeddingModelRequired
	}
	if strings.TrimSpace(c.OCRHost) == "" {
		return ErrOCRHostRequired
	}
	if strings.TrimSpace(c.OCRModel) == "" {
		return ErrOCRModelRequired
	}
	return nil
}
