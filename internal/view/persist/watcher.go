package persist

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadHandler is called with the freshly loaded snapshot when the
// watched file changes.
type ReloadHandler func(*Snapshot)

// Watcher monitors a snapshot file and reloads it on change, so an
// external workspace collaborator rewriting the file is picked up
// without an explicit reload call. Rapid successive writes are
// debounced.
type Watcher struct {
	mu sync.Mutex

	path     string
	handler  ReloadHandler
	debounce time.Duration

	fw      *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	running bool
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the debounce window for rapid changes.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a watcher for a snapshot path.
func NewWatcher(path string, handler ReloadHandler, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		path:     path,
		handler:  handler,
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The parent directory is watched so the file
// may not exist yet.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.fw = fw
	w.done = make(chan struct{})
	w.running = true

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.done)
	w.fw.Close()
	w.mu.Unlock()

	w.wg.Wait()
}

// loop dispatches debounced reloads.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if ev.Name != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			snap, err := Load(w.path)
			if err != nil {
				continue
			}
			w.handler(snap)
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}
