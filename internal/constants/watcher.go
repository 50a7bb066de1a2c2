package constants

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a constants file when it changes on disk. A file that fails
// to load is logged and the previous constants stay in effect.
type Watcher struct {
	path     string
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	onReload func(*Constants)
}

// NewWatcher prepares a watcher for path. onReload is called from Run's
// goroutine with each successfully loaded document.
func NewWatcher(path string, logger *slog.Logger, onReload func(*Constants)) (*Watcher, error) {
	if _, err := FormatForPath(path); err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		logger:   logger,
		watcher:  w,
		onReload: onReload,
	}, nil
}

// Run watches until ctx is cancelled. The parent directory is watched rather
// than the file so that editors which save by renaming are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.logger.Debug("Watching constants file", "path", w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Constants watcher error", "error", err)

		case <-ctx.Done():
			w.logger.Debug("Constants watcher stopping")
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	c, err := Load(w.path)
	if err != nil {
		w.logger.Warn("Failed to reload constants, keeping previous", "path", w.path, "error", err)
		return
	}
	w.logger.Info("Reloaded constants", "path", w.path, "menus", c.Rules.Len())
	if w.onReload != nil {
		w.onReload(c)
	}
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
