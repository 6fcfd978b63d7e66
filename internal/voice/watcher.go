package voice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher repopulates a catalog when piper models are added to or removed
// from a directory.
type Watcher struct {
	catalog  *Catalog
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher starts watching dir. Call Run to process events and Close to
// release the watch.
func NewWatcher(catalog *Catalog, dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create voice watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	log.Debug("watching voice dir", "dir", dir)
	return &Watcher{catalog: catalog, dir: dir, watcher: w, debounce: defaultDebounce}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			log.Debug("voice dir event", "file", ev.Name, "op", ev.Op)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerCh = timer.C

		case <-timerCh:
			timerCh = nil
			if err := w.catalog.Populate(ctx); err != nil {
				log.Warn("could not refresh voices", "dir", w.dir, "error", err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug("voice watcher error", "dir", w.dir, "error", err)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func relevant(ev fsnotify.Event) bool {
	if !IsPiperModel(ev.Name) && !strings.HasSuffix(ev.Name, ".onnx.json") {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Write)
}
