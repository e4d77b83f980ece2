package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches bursts of filesystem events (editors often write
// a schema file several times in quick succession) into one reload.
const debounceWindow = 200 * time.Millisecond

// Watch reloads the registry whenever a schema file in its directory
// changes. It blocks until ctx is done and is intended to run in its own
// goroutine. A reload failure is logged and the previous snapshot keeps
// serving.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create schema watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("watch schema dir %s: %w", r.dir, err)
	}
	r.logger.Info("watching schema dir", "dir", r.dir)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isSchemaFile(filepath.Base(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				reload = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("schema watcher error", "dir", r.dir, "error", err)

		case <-reload:
			timer = nil
			reload = nil
			if err := r.Reload(); err != nil {
				r.logger.Error("schema reload failed", "dir", r.dir, "error", err)
			}
		}
	}
}
