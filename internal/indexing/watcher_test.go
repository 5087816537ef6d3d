package indexing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWatcherIndexesFileWrittenAfterStart exercises the fsnotify-driven
// re-index path end to end; it relies on real filesystem events so it is
// skipped in short mode, matching this corpus's convention for watcher
// integration tests.
func TestWatcherIndexesFileWrittenAfterStart(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file watcher integration test in short mode")
	}

	p, root := newTestPipeline(t)

	w, err := NewWatcher(p)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	path := writeFile(t, root, "new.txt", "hello")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := p.Store.FileInfoByPath("new.txt"); ok {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	info, ok := p.Store.FileInfoByPath("new.txt")
	require.True(t, ok, "watcher should have indexed %s", path)
	assert.EqualValues(t, len("hello"), info.SizeBytes)
}

// TestWatcherRemovesFileOnDelete exercises the remove side of the debounced
// event handler.
func TestWatcherRemovesFileOnDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping file watcher integration test in short mode")
	}

	p, root := newTestPipeline(t)
	path := writeFile(t, root, "gone.txt", "bye")
	require.NoError(t, p.IndexFile(context.Background(), path))

	w, err := NewWatcher(p)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, os.Remove(path))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := p.Store.FileInfoByPath("gone.txt"); !ok {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	_, ok := p.Store.FileInfoByPath("gone.txt")
	assert.False(t, ok)
}
