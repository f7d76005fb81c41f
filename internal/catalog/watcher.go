// file: internal/catalog/watcher.go
// version: 1.0.0
// guid: 4e6f8a0b-3c5d-4e7f-9a1b-5c7d9e1f3a4b

package catalog

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the default settle period before a reload fires.
const DefaultDebounce = 3 * time.Second

// ReloadFunc is invoked after artifact writes settle for the debounce
// period. Implementations build a fresh catalog snapshot and swap it in;
// snapshots already handed to in-flight requests stay untouched.
type ReloadFunc func()

// Watcher monitors the catalog artifact files and triggers a debounced
// reload when either changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	debounce  time.Duration
	reload    ReloadFunc
	stop      chan struct{}
	stopped   chan struct{}

	mu      sync.Mutex
	timer   *time.Timer
	running bool
}

// NewWatcher creates a watcher for the given artifact paths. Pass 0 for
// debounce to use DefaultDebounce.
func NewWatcher(reload ReloadFunc, debounce time.Duration, paths ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	files := make(map[string]bool, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			files[abs] = true
		} else {
			files[p] = true
		}
	}
	return &Watcher{
		files:    files,
		debounce: debounce,
		reload:   reload,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Start begins watching the parent directories of the artifact files. It is
// safe to call only once.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsw

	// Watch directories, not files: editors and atomic-rename writers
	// replace the inode, which silently detaches a file-level watch.
	dirs := make(map[string]bool)
	for f := range w.files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := fsw.Add(d); err != nil {
			fsw.Close()
			return err
		}
	}

	go w.eventLoop()
	return nil
}

// Stop shuts down the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stop)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	<-w.stopped

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			log.Printf("[INFO] catalog artifact changed: %s (%s)", event.Name, event.Op)
			w.scheduleReload()
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[WARN] catalog watcher error: %v", err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		abs = event.Name
	}
	return w.files[abs]
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}
