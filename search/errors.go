package search

import "errors"

var (
	// ErrStoreRequired indicates NewSearcher was called without a store.
	ErrStoreRequired = errors.New("record store is required")

	// ErrEmptyQueryVector indicates a search with no query vector.
	ErrEmptyQueryVector = errors.New("query vector is required")
)
