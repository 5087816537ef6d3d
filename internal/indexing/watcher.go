package indexing

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kensave/CodeCortX-MCP/internal/debug"
)

// debounceWindow coalesces bursty filesystem events (write + chmod, or
// several writes from an editor's atomic-rename save) into one re-index
// per path.
const debounceWindow = 200 * time.Millisecond

// Watcher watches a project directory for filesystem changes and re-indexes
// or removes the affected file through Pipeline, debouncing bursts of
// events per path.
type Watcher struct {
	pipeline *Pipeline
	fsw      *fsnotify.Watcher

	mu     sync.Mutex
	timers map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewWatcher creates a Watcher over pipeline.Root. Call Start to begin
// watching and Close to stop.
func NewWatcher(pipeline *Pipeline) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		pipeline: pipeline,
		fsw:      fsw,
		timers:   make(map[string]*time.Timer),
		ctx:      ctx,
		cancel:   cancel,
	}
	return w, nil
}

// Start adds every directory under the project root to the underlying
// fsnotify watch set and begins processing events in a background
// goroutine. fsnotify does not watch subdirectories recursively, so a
// directory-only walk (walkDirs, below) seeds the watch list.
func (w *Watcher) Start() error {
	err := w.pipeline.walkDirs(func(dir string) error {
		return w.fsw.Add(dir)
	})
	if err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Close stops the watcher and releases its OS resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			debug.Log(debug.ComponentWatch, "fsnotify error: %v\n", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	w.mu.Lock()
	if t, ok := w.timers[event.Name]; ok {
		t.Stop()
	}
	w.timers[event.Name] = time.AfterFunc(debounceWindow, func() {
		w.process(event)
		w.mu.Lock()
		delete(w.timers, event.Name)
		w.mu.Unlock()
	})
	w.mu.Unlock()
}

func (w *Watcher) process(event fsnotify.Event) {
	rel, err := filepath.Rel(w.pipeline.Root, event.Name)
	if err != nil {
		return
	}

	switch {
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.pipeline.RemoveFile(rel)
	case event.Op&(fsnotify.Write|fsnotify.Create) != 0:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			// A directory created after Start is not in the fsnotify watch
			// set yet; add it and every subdirectory already inside it now.
			// Files already inside it are indexed on their next event.
			if !w.pipeline.Excluder.ShouldSkip(filepath.ToSlash(rel) + "/") {
				_ = walkDirsRecursive(w.pipeline, event.Name, w.fsw.Add)
			}
			return
		}
		if err := w.pipeline.IndexFile(w.ctx, event.Name); err != nil {
			debug.LogIndexing("watcher re-index of %s failed: %v\n", rel, err)
		}
	}
}

// walkDirs calls fn for every directory under p.Root that the excluder
// admits, so the watcher can register them all with fsnotify up front.
func (p *Pipeline) walkDirs(fn func(dir string) error) error {
	return walkDirsRecursive(p, p.Root, fn)
}

func walkDirsRecursive(p *Pipeline, dir string, fn func(dir string) error) error {
	rel, err := filepath.Rel(p.Root, dir)
	if err == nil && rel != "." && p.Excluder.ShouldSkip(filepath.ToSlash(rel)+"/") {
		return nil
	}
	if err := fn(dir); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			if err := walkDirsRecursive(p, filepath.Join(dir, e.Name()), fn); err != nil {
				return err
			}
		}
	}
	return nil
}
