package mock

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/halcyard/visimil/vision"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedImage(ctx, []byte("image bytes"))
	if err != nil {
		t.Fatalf("EmbedImage() error = %v", err)
	}
	second, err := embedder.EmbedImage(ctx, []byte("image bytes"))
	if err != nil {
		t.Fatalf("EmbedImage() error = %v", err)
	}
	other, err := embedder.EmbedImage(ctx, []byte("different bytes"))
	if err != nil {
		t.Fatalf("EmbedImage() error = %v", err)
	}

	if len(first) != DefaultDimension {
		t.Fatalf("len(vector) = %d, want %d", len(first), DefaultDimension)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatal("same bytes must embed to the same vector")
		}
	}

	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different bytes embedded to the same vector")
	}

	var norm float64
	for _, v := range first {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-5 {
		t.Errorf("vector norm = %v, want 1", math.Sqrt(norm))
	}

	if embedder.CallCount() != 3 {
		t.Errorf("CallCount() = %d, want 3", embedder.CallCount())
	}
}

func TestMockEmbedderEmptyInput(t *testing.T) {
	embedder := NewMockEmbedder()
	_, err := embedder.EmbedImage(context.Background(), nil)
	if !errors.Is(err, vision.ErrEmptyImage) {
		t.Errorf("EmbedImage(nil) error = %v, want ErrEmptyImage", err)
	}
}

func TestMockOCRCounts(t *testing.T) {
	ocr := NewMockOCR()
	ctx := context.Background()
	image := []byte("image")

	if _, err := ocr.Recognize(ctx, image, vision.OCRModeQuick); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if _, err := ocr.RecognizeFresh(ctx, image, vision.OCRModeThorough); err != nil {
		t.Fatalf("RecognizeFresh() error = %v", err)
	}

	if ocr.CallCount() != 2 {
		t.Errorf("CallCount() = %d, want 2", ocr.CallCount())
	}
	if ocr.FreshCount() != 1 {
		t.Errorf("FreshCount() = %d, want 1", ocr.FreshCount())
	}
}
