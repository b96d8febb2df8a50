// Package storage defines the document store interface and its implementations.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/deepsearch/internal/models"
)

// ErrNotFound is returned when a single document lookup finds nothing.
var ErrNotFound = errors.New("document not found")

// Storage persists documents keyed by store-assigned int64 IDs.
// IDs are monotonically increasing and never reused.
type Storage interface {
	// InsertDocument stores a new document and returns its ID.
	InsertDocument(ctx context.Context, content string, metadata map[string]interface{}) (int64, error)
	// GetDocument returns one document or ErrNotFound.
	GetDocument(ctx context.Context, id int64) (*models.Document, error)
	// FetchDocuments returns the documents that exist among ids. Missing IDs are omitted.
	FetchDocuments(ctx context.Context, ids []int64) (map[int64]*models.Document, error)
	// ListDocumentIDs returns every document ID in ascending order.
	ListDocumentIDs(ctx context.Context) ([]int64, error)
	CountDocuments(ctx context.Context) (int64, error)

	Close() error
}
