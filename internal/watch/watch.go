// Package watch monitors a workspace for Rust source file changes and
// feeds them to the indexer incrementally, debouncing bursts of events
// (editors routinely emit several writes for a single save) into a single
// reparse per file. Grounded in the recursive fsnotify directory-watcher
// and event debouncer pattern used by the pack's LCI file watcher, scaled
// down to omni's single-language, single-engine scope: no gitignore
// integration, no directory-event bookkeeping beyond adding watches for
// newly created directories.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oss-omni/omni/internal/discover"
	"github.com/oss-omni/omni/internal/indexer"
)

// DefaultDebounce is how long Watcher waits after the last event for a
// path before reparsing it, coalescing an editor's write+chmod+rename
// sequence into one reparse.
const DefaultDebounce = 300 * time.Millisecond

// EventKind is the debounced, coalesced outcome for a path.
type EventKind int

const (
	EventChanged EventKind = iota
	EventRemoved
)

// Watcher watches a workspace directory tree and calls the engine's
// incremental update methods as files change.
type Watcher struct {
	root     string
	engine   *indexer.Engine
	opts     discover.Options
	debounce time.Duration

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]EventKind
	timer   *time.Timer

	// OnEvent, if set, is called after each file is (re)indexed or removed —
	// used by the CLI to print progress lines.
	OnEvent func(path string, kind EventKind, err error)
}

// New creates a watcher for engine's workspace root.
func New(engine *indexer.Engine, opts discover.Options, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		root:     engine.Root,
		engine:   engine,
		opts:     opts,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]EventKind),
	}, nil
}

// Run watches until ctx is cancelled. It blocks; call it from its own
// goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addDirs(w.root); err != nil {
		return err
	}
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case _, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
		}
	}
}

func (w *Watcher) addDirs(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && isIgnoredDir(info.Name()) {
			return filepath.SkipDir
		}
		_ = w.fsw.Add(path)
		return nil
	})
}

func isIgnoredDir(name string) bool {
	switch name {
	case ".git", "target", "vendor", "node_modules", ".omni":
		return true
	}
	return strings.HasPrefix(name, ".") && name != "."
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			_ = w.fsw.Add(ev.Name)
		}
		return
	}

	if filepath.Ext(rel) != ".rs" {
		return
	}

	kind := EventChanged
	if ev.Op&fsnotify.Remove != 0 || ev.Op&fsnotify.Rename != 0 {
		kind = EventRemoved
	}
	w.schedule(rel, kind)
}

func (w *Watcher) schedule(rel string, kind EventKind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[rel] = kind
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	events := w.pending
	w.pending = make(map[string]EventKind)
	w.mu.Unlock()

	ctx := context.Background()
	for path, kind := range events {
		var err error
		switch kind {
		case EventRemoved:
			err = w.engine.RemoveFile(path)
		case EventChanged:
			err = w.engine.UpdateFile(ctx, path)
		}
		if w.OnEvent != nil {
			w.OnEvent(path, kind, err)
		}
	}
}

// Close stops the underlying fsnotify watcher without waiting for Run's
// context to be cancelled.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
