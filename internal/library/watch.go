package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of saves into one reload.
const DefaultDebounce = 300 * time.Millisecond

// Watch reloads the library whenever a document in its directory is created,
// written, removed or renamed. It blocks until ctx is cancelled.
func (l *Library) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}
	l.log.Info("watching library", "dir", l.dir)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			l.log.Debug("library change", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Error("watcher error", "error", err)

		case <-timer.C:
			if err := l.Load(ctx); err != nil {
				l.log.Warn("reload finished with errors", "error", err)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, constellation.Ext) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0
}
