package vector

import (
	"context"
	"testing"
)

func benchIndex(b *testing.B, n, dim int) *FlatIndex {
	b.Helper()
	idx, err := LoadOrCreate("", dim)
	if err != nil {
		b.Fatal(err)
	}
	vecs := make([][]float32, n)
	ids := make([]int64, n)
	for i := 0; i < n; i++ {
		vecs[i] = make([]float32, dim)
		vecs[i][0] = float32(i+1) / float32(n)
		vecs[i][i%dim] += 1
		ids[i] = int64(i + 1)
	}
	if err := idx.Add(context.Background(), vecs, ids); err != nil {
		b.Fatal(err)
	}
	return idx
}

func BenchmarkFlatIndexSearch(b *testing.B) {
	idx := benchIndex(b, 10000, 384)
	ctx := context.Background()
	query := make([]float32, 384)
	query[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.Search(ctx, query, 10)
	}
}

func BenchmarkFlatIndexAdd(b *testing.B) {
	idx, err := LoadOrCreate("", 384)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	vec := make([]float32, 384)
	vec[0] = 1.0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = idx.Add(ctx, [][]float32{vec}, []int64{int64(i + 1)})
	}
}
