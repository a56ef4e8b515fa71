package reindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/halcyard/visimil/analysis"
	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/storage"
	"github.com/halcyard/visimil/vision"
)

// BatchProcessor re-derives signals for batches of image records.
type BatchProcessor struct {
	store          storage.RecordStore
	embedder       vision.Embedder
	ocr            vision.OCRProducer
	ocrMode        vision.OCRMode
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for producer calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(store storage.RecordStore, embedder vision.Embedder, ocr vision.OCRProducer, ocrMode vision.OCRMode, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		store:          store,
		embedder:       embedder,
		ocr:            ocr,
		ocrMode:        ocrMode,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         slog.Default().With("component", "reindex"),
	}
}

// Process re-derives the vector, visual metadata and text for a batch of
// records and updates them in the store. Records whose source image cannot
// be read are skipped with a warning; producer failures are retried and
// abort the batch if retries are exhausted.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ImageRecord) error {
	if len(records) == 0 {
		return nil
	}

	updated := make([]*core.ImageRecord, 0, len(records))
	for _, record := range records {
		fresh, err := bp.refresh(ctx, record)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			bp.logger.Warn("skipping record", "id", record.Id, "source", record.Source, "err", err)
			continue
		}
		updated = append(updated, fresh)
	}

	if len(updated) == 0 {
		return nil
	}

	if _, err := bp.store.Put(ctx, updated...); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}

	return nil
}

// refresh rebuilds one record's derived signals from its source image.
// Identity fields (id, timestamps, source) are preserved.
func (bp *BatchProcessor) refresh(ctx context.Context, record *core.ImageRecord) (*core.ImageRecord, error) {
	if record.Source == "" {
		return nil, ErrNoSource
	}

	data, err := os.ReadFile(record.Source)
	if err != nil {
		return nil, err
	}

	var vector []float32
	err = RetryWithBackoff(ctx, func() error {
		var embedErr error
		vector, embedErr = bp.embedder.EmbedImage(ctx, data)
		return embedErr
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding after %d attempts: %w", bp.maxRetries, err)
	}

	metadata, err := analysis.AnalyzeImage(data)
	if err != nil {
		bp.logger.Warn("image analysis failed, keeping previous metadata", "id", record.Id, "err", err)
		metadata = record.Metadata
	}

	var ocrResult *vision.Result
	err = RetryWithBackoff(ctx, func() error {
		var ocrErr error
		ocrResult, ocrErr = bp.ocr.RecognizeFresh(ctx, data, bp.ocrMode)
		return ocrErr
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize text after %d attempts: %w", bp.maxRetries, err)
	}

	fresh := &core.ImageRecord{
		Id:         record.Id,
		Vector:     vector,
		Timestamp:  record.Timestamp,
		InsertedAt: record.InsertedAt,
		Source:     record.Source,
		Metadata:   metadata,
		OCR:        convertOCR(ocrResult),
	}

	if err := core.ValidateImageRecord(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// convertOCR maps a producer result onto the domain model.
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
