package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbedding wraps failures of the embedding provider, including
	// vectors of the wrong length.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStore wraps document store failures. Nothing was indexed.
	ErrStore = errors.New("document store failed")

	// ErrPartialIngest matches *PartialIngestError.
	ErrPartialIngest = errors.New("document stored but not indexed")
)

// PartialIngestError reports a document that was written to the store but
// could not be added to the vector index. The document is unsearchable until
// Repair re-indexes it.
type PartialIngestError struct {
	DocumentID int64
	Err        error
}

func (e *PartialIngestError) Error() string {
	return fmt.Sprintf("document %d stored but not indexed: %v", e.DocumentID, e.Err)
}

// Unwrap returns the index error.
func (e *PartialIngestError) Unwrap() error {
	return e.Err
}

// Is reports ErrPartialIngest as a match.
func (e *PartialIngestError) Is(target error) bool {
	return target == ErrPartialIngest
}
