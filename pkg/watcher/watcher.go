// Package watcher reports changes to a document file made by other programs.
package watcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ErrStopped is returned by Start after Stop.
var ErrStopped = errors.New("watcher stopped")

// Watcher watches a single file. The directory holding the file is watched
// rather than the file itself so that replace-by-rename saves are seen.
// Bursts of events are coalesced into one notification on Changed.
type Watcher struct {
	path     string
	duration time.Duration
	logger   *logrus.Entry

	fs       *fsnotify.Watcher
	debounce *debouncer
	changed  chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the quiet period before a change is reported.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.duration = d }
}

// WithLogger sets the logger.
func WithLogger(logger *logrus.Entry) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	w := &Watcher{
		path:    abs,
		logger:  logrus.NewEntry(logrus.New()),
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithField("component", "watcher")
	w.debounce = newDebouncer(w.duration)
	return w, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changed delivers one value per settled burst of changes. Notifications
// that arrive while a previous one is still unread are merged.
func (w *Watcher) Changed() <-chan struct{} { return w.changed }

// Start begins watching. It is a no-op when already started.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return ErrStopped
	}
	if w.started {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fs.Add(filepath.Dir(w.path)); err != nil {
		fs.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.fs = fs
	w.started = true

	w.wg.Add(1)
	go w.loop()

	w.logger.WithField("path", w.path).Debug("Watching document")
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	w.debounce.cancel()
	if !started {
		return
	}
	close(w.done)
	w.fs.Close()
	w.wg.Wait()
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.WithFields(logrus.Fields{
				"path": ev.Name,
				"op":   ev.Op.String(),
			}).Debug("Document event")
			w.debounce.trigger(w.notify)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("File watcher error")
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove)
}

func (w *Watcher) notify() {
	select {
	case w.changed <- struct{}{}:
	default:
	}
}
