package source

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tbourn/go-waiter-catalog/internal/catalog"
)

// Watcher reports changes to a single file. The parent directory is watched
// so that editors replacing the file through a rename are still seen. Bursts
// of events are coalesced into one callback per quiet period.
type Watcher struct {
	fw      *fsnotify.Watcher
	deb     *catalog.Debouncer
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// NewWatcher creates a watcher that waits for quiet periods of length wait.
func NewWatcher(wait time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		fw:   fw,
		deb:  catalog.NewDebouncer(wait),
		done: make(chan struct{}),
	}, nil
}

// Watch starts monitoring path. onChange runs on the watcher's goroutine (or
// a timer goroutine) after the file was written, created, removed or renamed.
// onError, when set, observes watcher errors.
func (w *Watcher) Watch(path string, onChange func(), onError func(error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	fire := func() {
		w.mu.Lock()
		stopped := w.stopped
		w.mu.Unlock()
		if !stopped {
			onChange()
		}
	}

	go func() {
		for {
			select {
			case event, ok := <-w.fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					w.deb.Trigger(fire)
				}

			case err, ok := <-w.fw.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Stop ends monitoring and drops any pending callback. Safe to call multiple
// times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	w.deb.Cancel()
	close(w.done)
	return w.fw.Close()
}
