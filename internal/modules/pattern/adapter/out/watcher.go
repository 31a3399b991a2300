package out

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

const defaultDebounce = 250 * time.Millisecond

// LibraryWatcher reindexes the library when pattern files change on
// disk. A burst of events collapses into one reindex per debounce
// window.
type LibraryWatcher struct {
	dir      string
	reindex  func(context.Context) (int, error)
	logger   hclog.Logger
	debounce time.Duration
}

func NewLibraryWatcher(dir string, reindex func(context.Context) (int, error), logger hclog.Logger) *LibraryWatcher {
	return &LibraryWatcher{dir: dir, reindex: reindex, logger: logger, debounce: defaultDebounce}
}

// Run blocks until ctx is cancelled.
func (w *LibraryWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create library directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	armed := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, patternExt) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if armed && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			armed = true
		case <-timer.C:
			armed = false
			indexed, err := w.reindex(ctx)
			if err != nil {
				w.logger.Warn("library reindex failed", "error", err)
				continue
			}
			w.logger.Debug("library reindexed", "patterns", indexed)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("library watcher error", "error", err)
		}
	}
}
