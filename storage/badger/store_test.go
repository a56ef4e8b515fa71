package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/storage"
)

func TestRecordStoreBasics(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() {
		store.Close()
		backend.Close()
	}()

	ctx := context.Background()

	record := &core.ImageRecord{
		Vector:    []float32{0.6, 0.8},
		Timestamp: time.Now().UTC(),
		Source:    "/images/one.png",
	}

	added, err := store.Put(ctx, record)
	if err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}
	if len(added) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(added))
	}
	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added[0].InsertedAt.IsZero() {
		t.Fatal("Expected InsertedAt to be set")
	}

	retrieved, err := store.Get(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Source != "/images/one.png" {
		t.Fatalf("Expected source '/images/one.png', got %q", retrieved.Source)
	}
	if len(retrieved.Vector) != 2 {
		t.Fatalf("Expected 2-dim vector, got %d", len(retrieved.Vector))
	}
}

func TestRecordStoreContentID(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	// Same vector content gets the same ID; re-ingesting overwrites.
	first := &core.ImageRecord{Vector: []float32{0.1, 0.9}, Timestamp: now, Source: "a"}
	second := &core.ImageRecord{Vector: []float32{0.1, 0.9}, Timestamp: now, Source: "b"}

	addedFirst, err := store.Put(ctx, first)
	if err != nil {
		t.Fatalf("Failed to put first record: %v", err)
	}
	addedSecond, err := store.Put(ctx, second)
	if err != nil {
		t.Fatalf("Failed to put second record: %v", err)
	}

	if addedFirst[0].Id != addedSecond[0].Id {
		t.Fatalf("Expected same content ID, got %d and %d", addedFirst[0].Id, addedSecond[0].Id)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 record after overwrite, got %d", count)
	}

	retrieved, err := store.Get(ctx, addedFirst[0].Id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Source != "b" {
		t.Fatalf("Expected overwritten source 'b', got %q", retrieved.Source)
	}
}

func TestRecordStoreGetAll(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()

	// Empty store yields an empty slice, not an error.
	records, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll on empty store: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("Expected 0 records, got %d", len(records))
	}

	now := time.Now().UTC()
	_, err = store.Put(ctx,
		&core.ImageRecord{Vector: []float32{1, 0}, Timestamp: now},
		&core.ImageRecord{Vector: []float32{0, 1}, Timestamp: now},
		&core.ImageRecord{Vector: []float32{0.5, 0.5}, Timestamp: now},
	)
	if err != nil {
		t.Fatalf("Failed to put records: %v", err)
	}

	records, err = store.GetAll(ctx)
	if err != nil {
		t.Fatalf("Failed to get all records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
}

func TestRecordStoreNotFound(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := store.Get(ctx, 12345); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get missing record: error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, 12345); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Delete missing record: error = %v, want ErrNotFound", err)
	}
}

func TestRecordStoreDelete(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()

	added, err := store.Put(ctx, &core.ImageRecord{
		Vector:    []float32{0.3, 0.7},
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}

	if err := store.Delete(ctx, added[0].Id); err != nil {
		t.Fatalf("Failed to delete record: %v", err)
	}

	if _, err := store.Get(ctx, added[0].Id); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Get after delete: error = %v, want ErrNotFound", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 records after delete, got %d", count)
	}

	// The time index entry must be gone as well.
	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("Expected no recent records, got %d", len(recent))
	}
}

func TestRecordStoreRecent(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()

	_, err = store.Put(ctx,
		&core.ImageRecord{Vector: []float32{1, 0}, Timestamp: now.Add(-2 * time.Hour), Source: "oldest"},
		&core.ImageRecord{Vector: []float32{0, 1}, Timestamp: now.Add(-1 * time.Hour), Source: "middle"},
		&core.ImageRecord{Vector: []float32{0.5, 0.5}, Timestamp: now, Source: "newest"},
	)
	if err != nil {
		t.Fatalf("Failed to put records: %v", err)
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(recent))
	}
	if recent[0].Source != "newest" {
		t.Fatalf("Expected 'newest' first, got %q", recent[0].Source)
	}
	if recent[1].Source != "middle" {
		t.Fatalf("Expected 'middle' second, got %q", recent[1].Source)
	}

	// Zero limit short-circuits.
	none, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Expected no records for limit 0, got %d", len(none))
	}
}

func TestRecordStoreClear(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = store.Put(ctx,
		&core.ImageRecord{Vector: []float32{1, 0}, Timestamp: time.Now().UTC()},
		&core.ImageRecord{Vector: []float32{0, 1}, Timestamp: time.Now().UTC()},
	)
	if err != nil {
		t.Fatalf("Failed to put records: %v", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 records after clear, got %d", count)
	}
}

func TestRecordStoreRoundTripFeatures(t *testing.T) {
	store, backend, err := NewMemoryStore()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer func() { store.Close(); backend.Close() }()

	ctx := context.Background()

	record := &core.ImageRecord{
		Vector:    []float32{0.2, 0.4, 0.6},
		Timestamp: time.Now().UTC().Truncate(time.Microsecond),
		Source:    "/images/sign.png",
		Metadata: &core.VisualMetadata{
			DominantColors: []core.Color{{R: 10, G: 20, B: 30}},
			Brightness:     0.4,
			Contrast:       0.6,
			ColorEntropy:   0.5,
			EdgeDensity:    0.7,
		},
		OCR: &core.OCRResult{
			Text:       "stop",
			Confidence: 0.95,
			Words:      []core.OCRWord{{Text: "stop", Confidence: 0.95}},
		},
	}

	added, err := store.Put(ctx, record)
	if err != nil {
		t.Fatalf("Failed to put record: %v", err)
	}

	retrieved, err := store.Get(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get record: %v", err)
	}
	if retrieved.Metadata == nil || retrieved.Metadata.EdgeDensity != 0.7 {
		t.Fatalf("Metadata not preserved: %+v", retrieved.Metadata)
	}
	if retrieved.OCR == nil || retrieved.OCR.Text != "stop" {
		t.Fatalf("OCR not preserved: %+v", retrieved.OCR)
	}
}
