package registry

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"taskrouter/internal/logging"
)

// Watcher hot-reloads the handler definition file and exposes the current
// registry through an atomic pointer. Classification always reads one
// consistent registry snapshot; a reload swaps the whole catalog at once.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	current  atomic.Pointer[Registry]
	debounce time.Duration
	lastSeen time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewWatcher loads the definition file once and prepares a watcher for it.
// The initial load must succeed; a router with no handlers refuses to start.
func NewWatcher(path string) (*Watcher, error) {
	reg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &LoadError{Reason: "cannot create file watcher", Err: err}
	}

	w := &Watcher{
		watcher:  fw,
		path:     path,
		debounce: 500 * time.Millisecond, // batch rapid editor saves
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.current.Store(reg)
	return w, nil
}

// Current returns the registry snapshot in effect right now.
func (w *Watcher) Current() *Registry {
	return w.current.Load()
}

// Start begins watching the definition file. Non-blocking.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory, not the file: editors replace files on save.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return &LoadError{Reason: "cannot watch registry directory", Err: err}
	}
	logging.Registry("watching %s for handler definition changes", w.path)

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
	logging.Registry("registry watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Error(logging.CategoryRegistry, "registry watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastSeen) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.lastSeen = now
	w.mu.Unlock()

	reg, err := LoadFile(w.path)
	if err != nil {
		// A broken edit must not take down a working router; keep the
		// previous registry until the file parses again.
		logging.Error(logging.CategoryRegistry, "hot reload rejected: %v", err)
		return
	}

	w.current.Store(reg)
	logging.Registry("hot reloaded %d handler profiles from %s", reg.Len(), w.path)
}
