// ABOUTME: fsnotify watcher that reloads the tool document on out-of-band edits
// ABOUTME: Watches the parent directory so editor rename-style saves are caught

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the registry when its document changes on disk.
type Watcher struct {
	registry *Registry
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher starts watching the registry's document directory. Watching the
// directory rather than the file survives editors that replace the file.
func NewWatcher(registry *Registry) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	dir := filepath.Dir(registry.Path())
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	return &Watcher{
		registry: registry,
		watcher:  fw,
		logger:   slog.Default().With("component", "tools-watcher"),
	}, nil
}

// Run processes filesystem events until ctx is cancelled. Reload failures
// are logged; the registry keeps its last good document.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	target := filepath.Clean(w.registry.Path())
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("tools config changed on disk", "op", event.Op.String())
			_ = w.registry.Reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}
