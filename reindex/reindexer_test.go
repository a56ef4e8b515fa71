package reindex

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/vision"
	"github.com/halcyard/visimil/vision/mock"
)

// writePNG renders a small solid-color image to a file and returns its path.
func writePNG(t *testing.T, dir, name string, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode image: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write image: %v", err)
	}
	return path
}

func testConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 1,
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		OCRMode:        vision.OCRModeThorough,
	}
}

func TestReindexerRun(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	redPath := writePNG(t, dir, "red.png", color.RGBA{R: 255, A: 255})
	bluePath := writePNG(t, dir, "blue.png", color.RGBA{B: 255, A: 255})

	// Stale records carry 2-dim vectors and no metadata; the record without
	// a source cannot be refreshed and stays as it is.
	ctx := context.Background()
	seed := []*core.ImageRecord{
		{Id: 1, Vector: []float32{1, 0}, Timestamp: time.Now().UTC().Add(-time.Hour), Source: redPath},
		{Id: 2, Vector: []float32{0, 1}, Timestamp: time.Now().UTC().Add(-time.Hour), Source: bluePath},
		{Id: 3, Vector: []float32{1, 1}, Timestamp: time.Now().UTC().Add(-time.Hour)},
	}
	if _, err := store.Put(ctx, seed...); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	var progress bytes.Buffer
	reindexer := NewReindexer(store, mock.NewMockProvider(), testConfig(), &progress)
	if err := reindexer.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, id := range []core.ID{1, 2} {
		record, err := store.Get(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get record %d: %v", id, err)
		}
		if len(record.Vector) != mock.DefaultDimension {
			t.Errorf("record %d vector dim = %d, want %d", id, len(record.Vector), mock.DefaultDimension)
		}
		if record.Metadata == nil {
			t.Errorf("record %d has no visual metadata after reindexing", id)
		}
		if !record.Timestamp.Equal(seed[id-1].Timestamp) {
			t.Errorf("record %d timestamp changed during reindexing", id)
		}
	}

	skipped, err := store.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Failed to get record 3: %v", err)
	}
	if len(skipped.Vector) != 2 {
		t.Errorf("sourceless record was modified, vector dim = %d", len(skipped.Vector))
	}

	out := progress.String()
	if !strings.Contains(out, "Starting reindexing of 3 records") {
		t.Errorf("progress output %q missing the start line", out)
	}
	if !strings.Contains(out, "Reindexing complete") {
		t.Errorf("progress output %q missing the completion line", out)
	}
}

func TestReindexerRunEmptyStore(t *testing.T) {
	store := newTestStore(t)

	var progress bytes.Buffer
	reindexer := NewReindexer(store, mock.NewMockProvider(), testConfig(), &progress)
	if err := reindexer.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(progress.String(), "No records found") {
		t.Errorf("progress output = %q, want a no-records notice", progress.String())
	}
}

func TestBatchProcessorMissingFile(t *testing.T) {
	store := newTestStore(t)
	provider := mock.NewMockProvider()

	processor := NewBatchProcessor(store, provider.Embedder(), provider.OCR(),
		vision.OCRModeQuick, 2, time.Millisecond)

	ctx := context.Background()
	record := &core.ImageRecord{
		Id:        9,
		Vector:    []float32{1, 0},
		Timestamp: time.Now().UTC().Add(-time.Hour),
		Source:    filepath.Join(t.TempDir(), "gone.png"),
	}
	if _, err := store.Put(ctx, record); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	// A missing source file skips the record without failing the batch.
	if err := processor.Process(ctx, []*core.ImageRecord{record}); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	stored, err := store.Get(ctx, 9)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if len(stored.Vector) != 2 {
		t.Errorf("record was modified despite the missing file, vector dim = %d", len(stored.Vector))
	}
}
