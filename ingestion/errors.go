package ingestion

import "errors"

var (
	// ErrStoreRequired indicates a nil record store was passed to the
	// pipeline constructor.
	ErrStoreRequired = errors.New("record store is required")

	// ErrProviderRequired indicates a nil vision provider was passed to
	// the pipeline constructor.
	ErrProviderRequired = errors.New("vision provider is required")

	// ErrEmptyImage indicates an ingestion input with no image bytes.
	ErrEmptyImage = errors.New("image data is empty")
)
