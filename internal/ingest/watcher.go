package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// HandleFunc processes one settled file.
type HandleFunc func(ctx context.Context, path string)

// Watcher watches a directory tree and calls a handler for matching files
// once they have stopped changing for the debounce interval.
type Watcher struct {
	root     string
	patterns []string
	debounce time.Duration
	handle   HandleFunc
	fsw      *fsnotify.Watcher
	log      *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher creates a watcher over root. Call Run to start it.
func NewWatcher(root string, patterns []string, debounce time.Duration, handle HandleFunc, log *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		root:     root,
		patterns: patterns,
		debounce: debounce,
		handle:   handle,
		fsw:      fsw,
		log:      log,
		pending:  make(map[string]time.Time),
	}, nil
}

// Run watches until ctx is cancelled. The watcher cannot be restarted.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.log.Info("watching for archive files",
		slog.String("root", w.root),
		slog.Duration("debounce", w.debounce),
	)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.onEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", slog.String("error", err.Error()))

		case now := <-ticker.C:
			w.flush(ctx, now)
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if hidden(path) && path != root {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("failed to watch directory", slog.String("dir", path), slog.String("error", err.Error()))
		}
		return nil
	})
}

func (w *Watcher) onEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !hidden(event.Name) {
				if err := w.addRecursive(event.Name); err != nil {
					w.log.Warn("failed to watch new directory", slog.String("dir", event.Name), slog.String("error", err.Error()))
				}
				w.enqueueExisting(event.Name)
			}
			return
		}
	}

	if !Matches(w.root, event.Name, w.patterns) {
		return
	}
	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// enqueueExisting picks up files written into a new directory before its
// watch was added.
func (w *Watcher) enqueueExisting(dir string) {
	files, err := Discover(dir, w.patterns)
	if err != nil {
		return
	}
	now := time.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		if Matches(w.root, f, w.patterns) {
			w.pending[f] = now
		}
	}
}

func (w *Watcher) flush(ctx context.Context, now time.Time) {
	w.mu.Lock()
	var ready []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		w.handle(ctx, path)
	}
}

func hidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
