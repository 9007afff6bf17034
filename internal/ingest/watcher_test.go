package ingest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, root string) <-chan string {
	t.Helper()
	seen := make(chan string, 16)
	w, err := NewWatcher(root, nil, 50*time.Millisecond, func(_ context.Context, path string) {
		seen <- path
	}, discardLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	// Let Run register its watches before the test writes files.
	time.Sleep(100 * time.Millisecond)
	return seen
}

func waitFor(t *testing.T, seen <-chan string) string {
	t.Helper()
	select {
	case p := <-seen:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher")
		return ""
	}
}

func TestWatcher_DebouncesWrites(t *testing.T) {
	root := t.TempDir()
	seen := startWatcher(t, root)

	path := writeFile(t, root, "a.mofarch.json", `{"identifier": "A"}`)
	writeFile(t, root, "a.mofarch.json", `{"identifier": "A2"}`)
	writeFile(t, root, "ignored.txt", "x")

	assert.Equal(t, path, waitFor(t, seen))

	select {
	case extra := <-seen:
		t.Fatalf("unexpected second event for %s", extra)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_NewDirectory(t *testing.T) {
	root := t.TempDir()
	seen := startWatcher(t, root)

	path := writeFile(t, root, filepath.Join("batch", "b.mofarch.csv"), "identifier,B\n")

	assert.Equal(t, path, waitFor(t, seen))
}
