// Package watch reports changes to individual files.
//
// Parent directories are watched rather than the files themselves, because
// most editors save by writing a temp file and renaming it over the original.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/objscene/internal/logger"
)

// Watcher debounces filesystem events for a set of files.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration

	mu     sync.Mutex
	files  map[string]struct{}
	dirs   map[string]struct{}
	timers map[string]*time.Timer

	fired chan string
	done  chan struct{}
	once  sync.Once
}

// New creates a watcher. A file that changes several times within debounce
// is reported once.
func New(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Watcher{
		fs:       fw,
		debounce: debounce,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		timers:   make(map[string]*time.Timer),
		fired:    make(chan string),
		done:     make(chan struct{}),
	}, nil
}

// Add starts tracking path. Callbacks receive the absolute form of path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.dirs[dir]; !ok {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	return nil
}

// Files returns the number of tracked files.
func (w *Watcher) Files() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.files)
}

// Run delivers change notifications to onChange until ctx is done or the
// watcher is closed. onChange is called from Run's goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule(filepath.Clean(event.Name))

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watch error", zap.Error(err))

		case path := <-w.fired:
			logger.Debug("file changed", zap.String("path", path))
			onChange(path)
		}
	}
}

// schedule (re)starts the debounce timer for a tracked file.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[path]; !ok {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.fired <- path:
		case <-w.done:
		}
	})
}

// Close stops the watcher. Run returns after Close.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, t := range w.timers {
			t.Stop()
		}
		w.mu.Unlock()

		err = w.fs.Close()
	})
	return err
}
