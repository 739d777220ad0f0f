package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the settings file and delivers per-key change
// notifications, mirroring the string-keyed interface the indicator
// controller consumes.
type Watcher struct {
	path     string
	current  Settings
	onChange func(key, value string)
}

// NewWatcher creates a watcher for the settings file at path. initial
// is the settings snapshot already delivered to the consumer; only
// keys that differ from it are emitted on the first reload.
func NewWatcher(path string, initial Settings) *Watcher {
	return &Watcher{
		path:    path,
		current: initial,
	}
}

// OnChange registers the callback invoked once per changed key.
// The callback runs on the watcher goroutine.
func (w *Watcher) OnChange(callback func(key, value string)) {
	w.onChange = callback
}

// Run watches the settings file until ctx is cancelled. Each write is
// reloaded, diffed against the previous settings, and emitted one key
// at a time. A failed reload keeps the previous settings active.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: the atomic save replaces the
	// file's inode, which a direct file watch would not survive.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch settings directory: %w", err)
	}

	slog.Info("Watching settings for changes", "path", w.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			// Reload on write or create. Saves happen via rename
			// (atomic write), which arrives as fsnotify.Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			settings, err := Load(w.path)
			if err != nil {
				slog.Error("Settings reload failed, keeping previous settings",
					"path", w.path, "error", err)
				continue
			}

			for _, kv := range Diff(w.current, settings) {
				slog.Debug("Setting changed", "key", kv.Key, "value", kv.Value)
				if w.onChange != nil {
					w.onChange(kv.Key, kv.Value)
				}
			}
			w.current = settings

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Settings watcher error", "error", err)
		}
	}
}
