package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// DefaultDebounce coalesces bursts of filesystem events.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports deletions and renames inside the workspace. Bursts of
// events are coalesced into one onRemove call.
type Watcher struct {
	watcher  *fsnotify.Watcher
	root     string
	log      logrus.FieldLogger
	onRemove func()
	debounce time.Duration

	// mu guards timer and stopped, and is held while onRemove runs so no
	// callback happens after Stop returns. onRemove must not block.
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

func NewWatcher(root string, log logrus.FieldLogger, onRemove func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	w := &Watcher{
		watcher:  fw,
		root:     root,
		log:      log.WithField("component", "watcher"),
		onRemove: onRemove,
		debounce: DefaultDebounce,
	}

	// Add workspace root and subdirectories
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if hidden(d.Name()) && p != root {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			w.log.WithError(err).WithField("dir", p).Debug("watch")
		}
		return nil
	})

	return w, nil
}

// Start begins watching for changes. Blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if hidden(filepath.Base(event.Name)) {
		return
	}

	if event.Has(fsnotify.Create) {
		// New directories need their own watch.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.watcher.Add(event.Name)
		}
		return
	}

	// A removed directory takes its documents with it, so every removal
	// or rename counts, not just markdown files.
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.timer = nil
	if w.stopped {
		return
	}

	w.log.Debug("documents removed")
	if w.onRemove != nil {
		w.onRemove()
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
