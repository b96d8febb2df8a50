package embedding

import (
	"context"

	"github.com/hyperjump/deepsearch/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and offline use. Each
// word is hashed into two signed buckets, so texts that share words get
// similar vectors and identical texts get identical ones.
type MockEmbedder struct {
	dimensions int
}

var _ Embedder = (*MockEmbedder)(nil)

// NewMockEmbedder returns a mock embedder producing unit vectors of the given
// dimensions (384 when dimensions <= 0).
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the hashed bag-of-words vector for text. Text without any
// words, or whose word buckets cancel out, falls back to a hash of the whole
// string, so the result is always a unit vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	words := splitWords(text)
	if len(words) == 0 {
		words = []string{text}
	}
	dims := uint64(e.dimensions)
	for _, w := range words {
		h := hash64(w)
		emb[h%dims] += sign(h >> 63)
		emb[(h>>32)%dims] += 0.5 * sign((h>>31)&1)
	}
	// Opposite signs can cancel out, mostly at small dimensions.
	if utils.L2Norm(emb) == 0 {
		emb[hash64(text)%dims] = 1
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

func sign(bit uint64) float32 {
	if bit == 1 {
		return -1
	}
	return 1
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op.
func (e *MockEmbedder) Close() error {
	return nil
}
