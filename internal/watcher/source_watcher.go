// Package watcher reports which registered pattern sources changed on disk.
package watcher

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mvp-joe/patternbox/internal/catalog"
)

// DefaultDebounce is the quiet period before changes are reported.
const DefaultDebounce = 500 * time.Millisecond

// SourceWatcher watches a source root and calls back with the identifiers
// whose registered files were written, created or removed.
type SourceWatcher struct {
	watcher       *fsnotify.Watcher
	root          string
	locations     map[string]string // absolute path -> identifier
	debounceTime  time.Duration
	callback      func(ids []string)
	ctx           context.Context
	cancel        context.CancelFunc
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	fireCh        chan struct{}
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// New creates a watcher over root for every identifier in table.
func New(root string, table *catalog.Table, debounce time.Duration) (*SourceWatcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	locations := make(map[string]string, table.Len())
	for _, id := range table.IDs() {
		loc, _ := table.Lookup(id)
		locations[filepath.Join(absRoot, filepath.FromSlash(loc))] = id
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &SourceWatcher{
		watcher:      fw,
		root:         absRoot,
		locations:    locations,
		debounceTime: debounce,
		accumulated:  make(map[string]bool),
		fireCh:       make(chan struct{}, 1),
		doneCh:       make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(absRoot); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching. The callback runs on the watch goroutine, so
// batches are delivered one at a time.
func (w *SourceWatcher) Start(ctx context.Context, callback func(ids []string)) error {
	if callback == nil {
		return errors.New("watcher callback is required")
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

// Stop stops watching. Safe to call more than once.
func (w *SourceWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Done is closed once the watch loop has exited.
func (w *SourceWatcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *SourceWatcher) watch() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						log.Printf("[watcher] failed to watch new directory %s: %v", event.Name, err)
					}
					// pages created together with their directory emit no event of their own
					w.accumulateExisting(event.Name)
					continue
				}
			}

			id, ok := w.identifierFor(event)
			if !ok {
				continue
			}

			w.accumulatedMu.Lock()
			w.accumulated[id] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer()

		case <-w.fireCh:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[watcher] error: %v", err)
		}
	}
}

func (w *SourceWatcher) identifierFor(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return "", false
	}
	id, ok := w.locations[filepath.Clean(event.Name)]
	return id, ok
}

// accumulateExisting queues registered files already present under dir.
func (w *SourceWatcher) accumulateExisting(dir string) {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	found := false

	w.accumulatedMu.Lock()
	for path, id := range w.locations {
		if len(path) > len(prefix) && path[:len(prefix)] == prefix {
			if _, err := os.Stat(path); err == nil {
				w.accumulated[id] = true
				found = true
			}
		}
	}
	w.accumulatedMu.Unlock()

	if found {
		w.resetDebounceTimer()
	}
}

func (w *SourceWatcher) flush() {
	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	ids := make([]string, 0, len(w.accumulated))
	for id := range w.accumulated {
		ids = append(ids, id)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	sort.Strings(ids)
	w.callback(ids)
}

func (w *SourceWatcher) resetDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceTime, func() {
		select {
		case w.fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *SourceWatcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *SourceWatcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			log.Printf("[watcher] error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if name := info.Name(); path != rootPath && (name == "node_modules" || name == ".git") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("[watcher] failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
