package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DebounceDelay coalesces bursts of writes into one reload.
var DebounceDelay = 100 * time.Millisecond

// Watch calls fn with the result of Load(path) whenever the file is written
// or recreated, until ctx is done. Editors that save by rename are covered
// because the parent directory is watched rather than the file. fn runs on
// the watching goroutine; Watch returns ctx.Err() on cancellation.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}

	// Stopped until the first matching event.
	debounce := time.NewTimer(DebounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	name := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			debounce.Reset(DebounceDelay)

		case <-debounce.C:
			fn(Load(path))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("watch config: %w", err))
		}
	}
}
