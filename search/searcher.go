package search

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/halcyard/visimil/core"
	"github.com/halcyard/visimil/similarity"
	"github.com/halcyard/visimil/storage"
	"github.com/panjf2000/ants/v2"
)

// DefaultMaxResults caps how many records a search returns.
const DefaultMaxResults = 15

// Searcher ranks stored images against a query using the multi-signal
// scoring pipeline. Each Search call is self-contained; a Searcher is safe
// for concurrent use.
type Searcher struct {
	store      storage.RecordStore
	pool       *ants.Pool
	maxResults int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for parallel scoring.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithMaxResults overrides the result cap.
func WithMaxResults(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			n = DefaultMaxResults
		}
		s.maxResults = n
		return nil
	}
}

// NewSearcher creates a new searcher over the given store.
func NewSearcher(store storage.RecordStore, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU()
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	s := &Searcher{
		store:      store,
		pool:       pool,
		maxResults: DefaultMaxResults,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.pool.Release()
			return nil, err
		}
	}

	return s, nil
}

// Release releases the scoring pool. The searcher should not be used after
// calling Release.
func (s *Searcher) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Search scores every stored record against the query, ranks the batch and
// applies the adaptive threshold.
// Returns at most the configured maximum number of results, sorted by
// similarity descending; every returned record's similarity strictly
// exceeds the threshold selected for this batch.
func (s *Searcher) Search(ctx context.Context, query similarity.Query) ([]*core.ScoredRecord, error) {
	return s.SearchWithMonitor(ctx, query, nil)
}

// SearchWithMonitor runs a search with stage callbacks.
// The monitor receives callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query similarity.Query, monitor SearchMonitor) ([]*core.ScoredRecord, error) {
	if monitor == nil {
		monitor = noopMonitor{}
	}
	if len(query.Vector) == 0 {
		return nil, ErrEmptyQueryVector
	}

	monitor.Start(query)

	// 1. Fetch all records; an empty store is an empty result, not an error.
	records, err := s.store.GetAll(ctx)
	if err != nil {
		s.logger.Error("error fetching records", "err", err)
		return nil, err
	}
	monitor.AfterFetch(len(records))
	if len(records) == 0 {
		return []*core.ScoredRecord{}, nil
	}

	// 2. Score every record. Scoring is pure and records are immutable
	// snapshots, so the batch runs in parallel; order is irrelevant because
	// results are sorted afterwards. Records that cannot be scored (vector
	// dimension mismatch) are skipped with a warning.
	scored := make([]*core.ScoredRecord, len(records))
	var wg sync.WaitGroup
	for i, record := range records {
		wg.Add(1)
		score := func() {
			defer wg.Done()
			result, err := similarity.ScoreRecord(query, record)
			if err != nil {
				s.logger.Warn("skipping record", "id", record.Id, "err", err)
				monitor.RecordSkipped(record.Id, err)
				return
			}
			scored[i] = result
		}
		if err := s.pool.Submit(score); err != nil {
			// Pool unavailable; score on the calling goroutine.
			score()
		}
	}
	wg.Wait()

	results := make([]*core.ScoredRecord, 0, len(scored))
	for _, r := range scored {
		if r != nil {
			results = append(results, r)
		}
	}

	// 3. Sort by similarity descending, id ascending as the tie-break.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Record.Id < results[j].Record.Id
	})
	monitor.AfterScoring(results)

	if len(results) == 0 {
		return results, nil
	}

	// 4. Derive the adaptive threshold from the batch distribution.
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.Similarity
	}
	dist := similarity.Analyze(scores)
	threshold := similarity.SelectThreshold(results, dist)
	monitor.AfterThreshold(dist, threshold)

	// 5. Filter and truncate.
	filtered := make([]*core.ScoredRecord, 0, len(results))
	for _, r := range results {
		if r.Similarity > threshold {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > s.maxResults {
		filtered = filtered[:s.maxResults]
	}
	monitor.Finish(filtered)

	return filtered, nil
}
