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

package visimil

import (
	"context"
	"io"
	"log/slog"

	"github.com/halcyard/visimil/analysis"
	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/ingestion"
	"github.com/halcyard/visimil/reindex"
	"github.com/halcyard/visimil/search"
	"github.com/halcyard/visimil/similarity"
	"github.com/halcyard/visimil/storage"
	"github.com/halcyard/visimil/storage/badger"
	"github.com/halcyard/visimil/vision"
	"github.com/halcyard/visimil/vision/openai"
)

// Engine owns the store and producers and hands out the pipelines that use
// them. Instances are independent; nothing is shared through package state.
type Engine struct {
	backend  *badger.Backend
	store    storage.RecordStore
	provider vision.Provider
	searcher *search.Searcher
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	visionConfig *vision.Config
	provider     vision.Provider
	inMemory     bool
}

// WithVisionConfig sets the configuration used to build the default
// OpenAI-compatible vision provider.
func WithVisionConfig(config *vision.Config) EngineOption {
	return func(o *engineOptions) {
		o.visionConfig = config
	}
}

// WithProvider supplies a pre-built vision provider, bypassing the default
// construction. The engine takes ownership and closes it on Close.
func WithProvider(provider vision.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryStore keeps all records in memory. Intended for tests.
func WithInMemoryStore() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// NewEngine opens the store at filePath and builds the vision services.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		visionConfig: vision.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewRecordStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.visionConfig)
		if err != nil {
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	searcher, err := search.NewSearcher(store)
	if err != nil {
		provider.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:  backend,
		store:    store,
		provider: provider,
		searcher: searcher,
		logger:   slog.Default(),
	}, nil
}

// Close releases the engine's producers, searcher and store.
func (e *Engine) Close() error {
	e.searcher.Release()

	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing vision provider", "err", err)
	}

	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing record store", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Store exposes the record store.
func (e *Engine) Store() storage.RecordStore {
	return e.store
}

// NewPipeline creates an ingestion pipeline bound to the engine's store and
// producers. The caller owns the pipeline and must Release it.
func (e *Engine) NewPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.store, e.provider, opts...)
}

// NewSearcher creates a searcher bound to the engine's store. The caller
// owns the searcher and must Release it.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(e.store, opts...)
}

// NewReindexer creates a reindexer that refreshes every stored record with
// the engine's current producers.
func (e *Engine) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(e.store, e.provider, config, progress)
}

// Search ranks stored images against a prepared query.
func (e *Engine) Search(ctx context.Context, query similarity.Query) ([]*core.ScoredRecord, error) {
	return e.searcher.Search(ctx, query)
}

// SearchImage derives the full query signature from raw image bytes and
// ranks stored images against it. The vector is required; metadata and text
// degrade to absent signals when they cannot be derived.
func (e *Engine) SearchImage(ctx context.Context, image []byte) ([]*core.ScoredRecord, error) {
	query, err := e.QueryFromImage(ctx, image)
	if err != nil {
		return nil, err
	}
	return e.searcher.Search(ctx, query)
}

// QueryFromImage builds a search query from raw image bytes using the
// engine's producers.
func (e *Engine) QueryFromImage(ctx context.Context, image []byte) (similarity.Query, error) {
	vector, err := e.provider.Embedder().EmbedImage(ctx, image)
	if err != nil {
		return similarity.Query{}, err
	}

	metadata, err := analysis.AnalyzeImage(image)
	if err != nil {
		e.logger.Warn("query image analysis failed, searching without visual metadata", "err", err)
		metadata = nil
	}

	var ocr *core.OCRResult
	result, err := e.provider.OCR().Recognize(ctx, image, vision.OCRModeQuick)
	if err != nil {
		e.logger.Warn("query text recognition failed, searching without text", "err", err)
	} else if result != nil && result.Text != "" {
		words := make([]core.OCRWord, len(result.Words))
		for i, w := range result.Words {
			words[i] = core.OCRWord{Text: w.Text, Confidence: w.Confidence}
		}
		ocr = &core.OCRResult{
			Text:       result.Text,
			Confidence: result.Confidence,
			Words:      words,
		}
	}

	return similarity.Query{
		Vector:   vector,
		Metadata: metadata,
		OCR:      ocr,
	}, nil
}
