// Package reindex provides functionality for re-deriving the stored signals
// of existing image records with new or updated producers.
//
// This package supports batch processing of image records, progress tracking
// and retry logic with exponential backoff. Records are re-read from their
// source files, so only records with an accessible source can be reindexed.
package reindex
