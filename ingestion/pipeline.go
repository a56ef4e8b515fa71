package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/halcyard/visimil/analysis"
	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/storage"
	"github.com/halcyard/visimil/vision"
)

// Pipeline orchestrates ingestion of images into the record store.
// It manages concurrent enrichment of batches over a worker pool.
type Pipeline struct {
	store    storage.RecordStore
	embedder vision.Embedder
	ocr      vision.OCRProducer
	pool     *ants.Pool
	ocrMode  vision.OCRMode
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithOCRMode sets the recognition effort used during ingestion.
// Default is vision.OCRModeQuick.
func WithOCRMode(mode vision.OCRMode) Option {
	return func(p *Pipeline) error {
		p.ocrMode = mode
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(store storage.RecordStore, provider vision.Provider, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:    store,
		embedder: provider.Embedder(),
		ocr:      provider.OCR(),
		pool:     pool,
		ocrMode:  vision.OCRModeQuick,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// ImageInput holds one image to ingest.
type ImageInput struct {
	// Data is the encoded image bytes.
	Data []byte

	// Source records where the image came from, typically a file path.
	Source string

	// Timestamp is when the image was captured or authored.
	// Uses the current time if zero.
	Timestamp time.Time
}

// IngestImage processes and stores a single image synchronously.
// The returned record carries the assigned content ID.
func (p *Pipeline) IngestImage(ctx context.Context, input ImageInput) (*core.ImageRecord, error) {
	if len(input.Data) == 0 {
		return nil, ErrEmptyImage
	}

	record, err := p.enrich(ctx, input)
	if err != nil {
		return nil, err
	}

	stored, err := p.store.Put(ctx, record)
	if err != nil {
		return nil, err
	}
	record = stored[0]

	p.logger.Debug("ingested image",
		"id", record.Id, "source", record.Source, "dim", len(record.Vector))
	return record, nil
}

// IngestBatch processes images concurrently over the worker pool. Images
// that fail to process are logged and skipped. The returned slice holds the
// records that were stored, in no particular order.
func (p *Pipeline) IngestBatch(ctx context.Context, inputs []ImageInput) ([]*core.ImageRecord, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		records []*core.ImageRecord
	)

	for _, input := range inputs {
		input := input
		wg.Add(1)
		task := func() {
			defer wg.Done()
			record, err := p.IngestImage(ctx, input)
			if err != nil {
				p.logger.Warn("skipping image during batch ingestion",
					"source", input.Source, "err", err)
				return
			}
			mu.Lock()
			records = append(records, record)
			mu.Unlock()
		}
		if err := p.pool.Submit(task); err != nil {
			// Released or overloaded pool; run inline rather than drop
			// the image.
			task()
		}
	}
	wg.Wait()

	return records, nil
}

// enrich derives all signals for an image and assembles the record.
// The vector is required; metadata and text are optional signals whose
// absence is tolerated downstream.
func (p *Pipeline) enrich(ctx context.Context, input ImageInput) (*core.ImageRecord, error) {
	vector, err := p.embedder.EmbedImage(ctx, input.Data)
	if err != nil {
		return nil, err
	}

	metadata, err := analysis.AnalyzeImage(input.Data)
	if err != nil {
		p.logger.Warn("image analysis failed, storing without visual metadata",
			"source", input.Source, "err", err)
		metadata = nil
	}

	ocrResult, err := p.ocr.Recognize(ctx, input.Data, p.ocrMode)
	if err != nil {
		p.logger.Warn("text recognition failed, storing without text",
			"source", input.Source, "err", err)
		ocrResult = nil
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	record := &core.ImageRecord{
		Vector:    vector,
		Timestamp: timestamp,
		Source:    input.Source,
		Metadata:  metadata,
		OCR:       convertOCR(ocrResult),
	}

	if err := core.ValidateImageRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

// convertOCR maps a producer result onto the domain model. Empty results
// collapse to nil so absent text is represented uniformly.
func convertOCR(result *vision.Result) *core.OCRResult {
	if result == nil || result.Text == "" {
		return nil
	}

	words := make([]core.OCRWord, len(result.Words))
	for i, w := range result.Words {
		words[i] = core.OCRWord{Text: w.Text, Confidence: w.Confidence}
	}

	return &core.OCRResult{
		Text:       result.Text,
		Confidence: result.Confidence,
		Words:      words,
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
