package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	return r.err
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	// Give fsnotify time to register the roots.
	time.Sleep(100 * time.Millisecond)
}

func TestWatcher_IngestsNewFilesOnce(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{".txt"}, true, rec.handle, WithDebounce(50*time.Millisecond))
	startWatcher(t, w)

	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.go"), []byte("package x"), 0644))

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{path}, rec.snapshot())

	// Modifying an ingested file does not ingest it again.
	require.NoError(t, os.WriteFile(path, []byte("hello again"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New([]string{dir}, []string{"md"}, true, rec.handle, WithDebounce(50*time.Millisecond))
	startWatcher(t, w)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)
	path := filepath.Join(sub, "doc.md")
	require.NoError(t, os.WriteFile(path, []byte("# doc"), 0644))

	require.Eventually(t, func() bool {
		for _, p := range rec.snapshot() {
			if p == path {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatcher_HandlerErrorIsNotRetried(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{err: errors.New("embedding down")}
	w := New([]string{dir}, nil, false, rec.handle, WithDebounce(30*time.Millisecond))
	startWatcher(t, w)

	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("xy"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWatcher_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox", "nested")
	w := New([]string{root}, nil, true, (&recorder{}).handle)
	startWatcher(t, w)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"/a/b.txt", []string{".txt"}, true},
		{"/a/b.TXT", []string{"txt"}, true},
		{"/a/b.pdf", []string{".txt", ".md"}, false},
		{"/a/b", []string{".txt"}, false},
		{"/a/b.anything", nil, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchExtension(tt.path, tt.exts), tt.path)
	}
}
