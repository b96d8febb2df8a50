package vector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/hyperjump/deepsearch/pkg/utils"
)

// FlatIndex is a brute-force inner product index over L2-normalized vectors,
// persisted to a single file after every successful Add.
//
// Vectors live in one contiguous slice (slot i occupies
// vectors[i*dim:(i+1)*dim]) with ids[i] the document that owns slot i.
// Add holds the write lock across mutation and persistence; Search holds the
// read lock, so it always sees a durable snapshot.
type FlatIndex struct {
	dimensions int
	path       string
	vectors    []float32
	ids        []int64
	mu         sync.RWMutex
}

var _ VectorIndex = (*FlatIndex)(nil)

// LoadOrCreate opens the index persisted at path, or returns an empty index
// bound to dimensions when nothing exists there (creating the parent directory).
// An empty path gives an index that is never written to disk.
func LoadOrCreate(path string, dimensions int) (*FlatIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	idx := &FlatIndex{
		dimensions: dimensions,
		path:       path,
		vectors:    make([]float32, 0),
		ids:        make([]int64, 0),
	}
	if path == "" {
		return idx, nil
	}
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat index file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, corruptf("%s is not a regular file", path)
	}
	vectors, ids, err := readIndexFile(path, dimensions)
	if err != nil {
		return nil, err
	}
	idx.vectors = vectors
	idx.ids = ids
	return idx, nil
}

// Add normalizes each vector and appends it with its document ID, then writes
// the whole index to disk before returning. If the write fails the index is
// rolled back to its state before the call and ErrPersistence is returned.
// The caller's slices are not modified.
func (f *FlatIndex) Add(ctx context.Context, vectors [][]float32, ids []int64) error {
	if len(vectors) != len(ids) {
		return fmt.Errorf("%w: %d vectors but %d ids", ErrDimensionMismatch, len(vectors), len(ids))
	}
	for _, vec := range vectors {
		if len(vec) != f.dimensions {
			return &DimensionError{Expected: f.dimensions, Actual: len(vec)}
		}
	}
	if len(vectors) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := make([]float32, len(vectors)*f.dimensions)
	for i, vec := range vectors {
		dst := batch[i*f.dimensions : (i+1)*f.dimensions]
		copy(dst, vec)
		utils.NormalizeL2(dst)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.ids)
	f.vectors = append(f.vectors, batch...)
	f.ids = append(f.ids, ids...)
	if err := f.saveLocked(); err != nil {
		f.vectors = f.vectors[:n*f.dimensions]
		f.ids = f.ids[:n]
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Search returns up to k entries by descending cosine similarity to query.
// Equal scores keep slot order, so earlier inserts win ties. An empty index
// yields an empty slice.
func (f *FlatIndex) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != f.dimensions {
		return nil, &DimensionError{Expected: f.dimensions, Actual: len(query)}
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	q := make([]float32, f.dimensions)
	copy(q, query)
	utils.NormalizeL2(q)

	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.ids) == 0 {
		return []Result{}, nil
	}
	scores := make([]Result, len(f.ids))
	for i, id := range f.ids {
		vec := f.vectors[i*f.dimensions : (i+1)*f.dimensions]
		scores[i] = Result{DocumentID: id, Score: utils.Dot(q, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if k > len(scores) {
		k = len(scores)
	}
	return scores[:k:k], nil
}

// Save writes the current vectors and document IDs to the index path.
func (f *FlatIndex) Save() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if err := f.saveLocked(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func (f *FlatIndex) saveLocked() error {
	if f.path == "" {
		return nil
	}
	return writeIndexFile(f.path, f.dimensions, f.vectors, f.ids)
}

// DocumentIDs returns a copy of the document IDs in slot order.
func (f *FlatIndex) DocumentIDs() []int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]int64, len(f.ids))
	copy(out, f.ids)
	return out
}

// Size returns the number of vectors in the index.
func (f *FlatIndex) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.ids)
}

// Dimensions returns the fixed vector length of the index.
func (f *FlatIndex) Dimensions() int {
	return f.dimensions
}

// Path returns where the index is persisted ("" for memory only).
func (f *FlatIndex) Path() string {
	return f.path
}

// Close is a no-op; every successful Add is already on disk.
func (f *FlatIndex) Close() error {
	return nil
}
