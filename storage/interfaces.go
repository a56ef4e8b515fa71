package storage

import (
	"context"

	"github.com/halcyard/visimil/core"
)

// RecordStore provides persistence for image records.
// Implementations must be thread-safe and support concurrent access; reads
// are non-exclusive with respect to concurrent writes, so a search racing a
// delete may or may not observe the deleted record.
type RecordStore interface {
	// GetAll retrieves every stored record. Returns an empty slice for an
	// empty store, not an error.
	GetAll(ctx context.Context) ([]*core.ImageRecord, error)

	// Get retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.ImageRecord, error)

	// Put stores one or more records. Records with ID 0 get a content hash
	// of their vector assigned. Sets InsertedAt if not already set.
	// Returns the records with IDs and timestamps populated.
	Put(ctx context.Context, records ...*core.ImageRecord) ([]*core.ImageRecord, error)

	// Delete removes records by their IDs.
	// Returns ErrNotFound if any record doesn't exist.
	Delete(ctx context.Context, ids ...core.ID) error

	// Recent retrieves up to limit records ordered by timestamp descending.
	Recent(ctx context.Context, limit int) ([]*core.ImageRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Close closes the store and releases resources.
	Close() error
}
