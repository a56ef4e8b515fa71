package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/similarity"
	"github.com/halcyard/visimil/storage"
	badgerstore "github.com/halcyard/visimil/storage/badger"
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

func seedRecords(t *testing.T, store storage.RecordStore, records ...*core.ImageRecord) {
	t.Helper()
	_, err := store.Put(context.Background(), records...)
	require.NoError(t, err)
}

func record(id core.ID, vector ...float32) *core.ImageRecord {
	return &core.ImageRecord{
		Id:        id,
		Vector:    vector,
		Timestamp: time.Now().UTC().Add(-time.Hour),
	}
}

// recordingMonitor captures search stage callbacks for assertions.
type recordingMonitor struct {
	mu         sync.Mutex
	started    bool
	fetched    int
	skipped    []core.ID
	scoredLen  int
	threshold  float64
	finalCount int
}

func (m *recordingMonitor) Start(similarity.Query) { m.started = true }
func (m *recordingMonitor) AfterFetch(count int)   { m.fetched = count }

func (m *recordingMonitor) RecordSkipped(id core.ID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped = append(m.skipped, id)
}

func (m *recordingMonitor) AfterScoring(results []*core.ScoredRecord) {
	m.scoredLen = len(results)
}

func (m *recordingMonitor) AfterThreshold(dist similarity.Distribution, threshold float64) {
	m.threshold = threshold
}

func (m *recordingMonitor) Finish(results []*core.ScoredRecord) {
	m.finalCount = len(results)
}

func TestNewSearcher(t *testing.T) {
	t.Run("requires a store", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("with options", func(t *testing.T) {
		store := newTestStore(t)
		searcher, err := NewSearcher(store,
			WithPoolSize(2),
			WithMaxResults(5),
			WithLogger(nil),
		)
		require.NoError(t, err)
		defer searcher.Release()
		assert.Equal(t, 5, searcher.maxResults)
		assert.NotNil(t, searcher.logger)
	})
}

func TestSearchEmptyQueryVector(t *testing.T) {
	store := newTestStore(t)
	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	_, err = searcher.Search(context.Background(), similarity.Query{})
	assert.ErrorIs(t, err, ErrEmptyQueryVector)
}

func TestSearchEmptyStore(t *testing.T) {
	store := newTestStore(t)
	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	results, err := searcher.Search(context.Background(), similarity.Query{
		Vector: []float32{1, 0},
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchRanksAndFilters(t *testing.T) {
	store := newTestStore(t)
	// An exact match, a partial match, and an orthogonal vector that
	// falls below the adaptive cutoff.
	seedRecords(t, store,
		record(1, 0, 1),
		record(2, 1, 0),
		record(3, 0.8, 0.6),
	)

	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	results, err := searcher.Search(context.Background(), similarity.Query{
		Vector: []float32{1, 0},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, core.ID(2), results[0].Record.Id)
	assert.Equal(t, core.ID(3), results[1].Record.Id)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestSearchTieBreaksByID(t *testing.T) {
	store := newTestStore(t)
	// Identical vectors score identically; ordering falls back to the id.
	seedRecords(t, store,
		record(30, 0.6, 0.8),
		record(10, 0.6, 0.8),
		record(20, 0.6, 0.8),
	)

	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	results, err := searcher.Search(context.Background(), similarity.Query{
		Vector: []float32{0.6, 0.8},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, core.ID(10), results[0].Record.Id)
	assert.Equal(t, core.ID(20), results[1].Record.Id)
	assert.Equal(t, core.ID(30), results[2].Record.Id)
}

func TestSearchMaxResults(t *testing.T) {
	store := newTestStore(t)
	seedRecords(t, store,
		record(1, 0.6, 0.8),
		record(2, 0.6, 0.8),
		record(3, 0.6, 0.8),
		record(4, 0.6, 0.8),
		record(5, 0.6, 0.8),
	)

	searcher, err := NewSearcher(store, WithMaxResults(3))
	require.NoError(t, err)
	defer searcher.Release()

	results, err := searcher.Search(context.Background(), similarity.Query{
		Vector: []float32{0.6, 0.8},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, core.ID(1), results[0].Record.Id)
}

func TestSearchSkipsMismatchedDimensions(t *testing.T) {
	store := newTestStore(t)
	seedRecords(t, store,
		record(1, 1, 0),
		record(2, 1, 0, 0), // wrong dimension, must be skipped
	)

	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), similarity.Query{
		Vector: []float32{1, 0},
	}, monitor)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.ID(1), results[0].Record.Id)

	require.Len(t, monitor.skipped, 1)
	assert.Equal(t, core.ID(2), monitor.skipped[0])
}

func TestSearchMonitorStages(t *testing.T) {
	store := newTestStore(t)
	seedRecords(t, store,
		record(1, 1, 0),
		record(2, 0.8, 0.6),
		record(3, 0, 1),
	)

	searcher, err := NewSearcher(store)
	require.NoError(t, err)
	defer searcher.Release()

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), similarity.Query{
		Vector: []float32{1, 0},
	}, monitor)
	require.NoError(t, err)

	assert.True(t, monitor.started)
	assert.Equal(t, 3, monitor.fetched)
	assert.Equal(t, 3, monitor.scoredLen)
	assert.GreaterOrEqual(t, monitor.threshold, 0.4)
	assert.LessOrEqual(t, monitor.threshold, 0.85)
	assert.Equal(t, len(results), monitor.finalCount)

	for _, r := range results {
		assert.Greater(t, r.Similarity, monitor.threshold)
	}
}
