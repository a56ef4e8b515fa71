package ingestion

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/halcyard/visimil/storage"
	badgerstore "github.com/halcyard/visimil/storage/badger"
	"github.com/halcyard/visimil/vision"
	"github.com/halcyard/visimil/vision/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.RecordStore {
	t.Helper()
	store, backend, err := badgerstore.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		backend.Close()
	})
	return store
}

// testPNG encodes a small solid-color image.
func testPNG(t *testing.T, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewPipeline(t *testing.T) {
	store := newTestStore(t)

	t.Run("requires a store", func(t *testing.T) {
		_, err := NewPipeline(nil, mock.NewMockProvider())
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("requires a provider", func(t *testing.T) {
		_, err := NewPipeline(store, nil)
		assert.ErrorIs(t, err, ErrProviderRequired)
	})

	t.Run("with options", func(t *testing.T) {
		pipeline, err := NewPipeline(store, mock.NewMockProvider(),
			WithPoolSize(2),
			WithOCRMode(vision.OCRModeThorough),
			WithLogger(nil),
		)
		require.NoError(t, err)
		defer pipeline.Release()
		assert.Equal(t, vision.OCRModeThorough, pipeline.ocrMode)
	})
}

func TestIngestImage(t *testing.T) {
	store := newTestStore(t)
	provider := mock.NewMockProvider()
	pipeline, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	captured := time.Now().UTC().Add(-time.Hour)

	record, err := pipeline.IngestImage(ctx, ImageInput{
		Data:      testPNG(t, color.RGBA{R: 200, G: 40, B: 40, A: 255}),
		Source:    "/photos/red.png",
		Timestamp: captured,
	})
	require.NoError(t, err)

	assert.NotZero(t, record.Id)
	assert.Len(t, record.Vector, mock.DefaultDimension)
	assert.Equal(t, "/photos/red.png", record.Source)
	assert.True(t, record.Timestamp.Equal(captured))
	require.NotNil(t, record.Metadata)
	assert.NotEmpty(t, record.Metadata.DominantColors)
	assert.Nil(t, record.OCR, "empty OCR results must collapse to nil")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := store.Get(ctx, record.Id)
	require.NoError(t, err)
	assert.Equal(t, record.Vector, stored.Vector)
}

func TestIngestImageEmptyData(t *testing.T) {
	store := newTestStore(t)
	pipeline, err := NewPipeline(store, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.IngestImage(context.Background(), ImageInput{})
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestIngestImageWithText(t *testing.T) {
	store := newTestStore(t)
	provider := mock.NewMockProvider()
	provider.MockOCR.RecognizeFunc = func(ctx context.Context, image []byte, mode vision.OCRMode) (*vision.Result, error) {
		return &vision.Result{
			Text:       "open daily",
			Confidence: 0.88,
			Words: []vision.Word{
				{Text: "open", Confidence: 0.9},
				{Text: "daily", Confidence: 0.86},
			},
		}, nil
	}

	pipeline, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	record, err := pipeline.IngestImage(context.Background(), ImageInput{
		Data: testPNG(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}),
	})
	require.NoError(t, err)

	require.NotNil(t, record.OCR)
	assert.Equal(t, "open daily", record.OCR.Text)
	assert.Equal(t, 0.88, record.OCR.Confidence)
	require.Len(t, record.OCR.Words, 2)
	assert.Equal(t, "open", record.OCR.Words[0].Text)
}

func TestIngestImageUndecodableData(t *testing.T) {
	// The mock embedder accepts any bytes, so an undecodable payload still
	// ingests; it just carries no visual metadata.
	store := newTestStore(t)
	pipeline, err := NewPipeline(store, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	record, err := pipeline.IngestImage(context.Background(), ImageInput{
		Data:   []byte("not an image"),
		Source: "stream",
	})
	require.NoError(t, err)
	assert.Nil(t, record.Metadata)
	assert.NotEmpty(t, record.Vector)
}

func TestIngestImageEmbeddingFailure(t *testing.T) {
	store := newTestStore(t)
	provider := mock.NewMockProvider()
	provider.MockEmbedder.EmbedImageFunc = func(ctx context.Context, image []byte) ([]float32, error) {
		return nil, assert.AnError
	}

	pipeline, err := NewPipeline(store, provider)
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.IngestImage(context.Background(), ImageInput{
		Data: testPNG(t, color.RGBA{A: 255}),
	})
	assert.ErrorIs(t, err, assert.AnError)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestIngestBatch(t *testing.T) {
	store := newTestStore(t)
	pipeline, err := NewPipeline(store, mock.NewMockProvider(), WithPoolSize(2))
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	inputs := []ImageInput{
		{Data: testPNG(t, color.RGBA{R: 255, A: 255}), Source: "red"},
		{Data: nil, Source: "broken"}, // skipped, not fatal
		{Data: testPNG(t, color.RGBA{B: 255, A: 255}), Source: "blue"},
	}

	records, err := pipeline.IngestBatch(ctx, inputs)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestBatchEmpty(t *testing.T) {
	store := newTestStore(t)
	pipeline, err := NewPipeline(store, mock.NewMockProvider())
	require.NoError(t, err)
	defer pipeline.Release()

	records, err := pipeline.IngestBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, records)
}
