package embedding

import (
	"context"
	"testing"

	"github.com/hyperjump/deepsearch/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	a, err := e.Embed(ctx, "hello")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "hello")
	require.NoError(t, err)
	c, err := e.Embed(ctx, "goodbye")
	require.NoError(t, err)

	assert.Len(t, a, 8)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.InDelta(t, 1.0, utils.L2Norm(a), 1e-5)
	assert.Equal(t, 8, e.Dimensions())
}

func TestMockEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	query, err := e.Embed(ctx, "Go channels")
	require.NoError(t, err)
	related, err := e.Embed(ctx, "channels in Go connect goroutines")
	require.NoError(t, err)
	unrelated, err := e.Embed(ctx, "banana bread recipe")
	require.NoError(t, err)

	assert.Greater(t, utils.Dot(query, related), utils.Dot(query, unrelated))
}

func TestMockEmbedder_NoWords(t *testing.T) {
	v, err := NewMockEmbedder(16).Embed(context.Background(), "?!")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, utils.L2Norm(v), 1e-5)
}

func TestMockEmbedder_NeverZeroAtSmallDimensions(t *testing.T) {
	ctx := context.Background()
	texts := []string{"hello world", "a b", "go go", "x y z", "search engine", "one two three four"}
	for _, dims := range []int{1, 2, 4, 8} {
		e := NewMockEmbedder(dims)
		for _, text := range texts {
			v, err := e.Embed(ctx, text)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, utils.L2Norm(v), 1e-5, "dims=%d text=%q", dims, text)
		}
	}
}

func TestMockEmbedder_DefaultDimensions(t *testing.T) {
	assert.Equal(t, 384, NewMockEmbedder(0).Dimensions())
}

func TestMockEmbedder_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockEmbedder(4).Embed(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkMockEmbedder_Embed(b *testing.B) {
	e := NewMockEmbedder(384)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = e.Embed(ctx, "benchmark query text for embedding")
	}
}
