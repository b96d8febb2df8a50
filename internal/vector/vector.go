// Package vector provides the persisted vector index used for semantic search.
package vector

import "context"

// VectorIndex stores normalized vectors keyed by document ID and answers
// top-k cosine similarity queries. Entries are append-only.
type VectorIndex interface {
	Add(ctx context.Context, vectors [][]float32, ids []int64) error
	Search(ctx context.Context, query []float32, k int) ([]Result, error)
	Save() error
	DocumentIDs() []int64
	Size() int
	Dimensions() int
	Close() error
}

// Result is a single vector search hit.
type Result struct {
	DocumentID int64   `json:"document_id"`
	Score      float32 `json:"score"` // cosine similarity in [-1, 1]
}
