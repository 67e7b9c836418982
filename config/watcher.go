// Package config provides configuration types and utilities for the RAG service.
// This file contains the config file watcher used by serve --watch.
package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ============================================================================
// CONFIG FILE WATCHER
// ============================================================================

// Watcher watches a configuration file and reloads it on change
// Editors replace files via rename, so the parent directory is watched and
// events are filtered to the target file
type Watcher struct {
	watcher       *fsnotify.Watcher
	filePath      string
	onChange      func(*Config)
	debounceDelay time.Duration

	mu         sync.Mutex
	isWatching bool
	cancel     context.CancelFunc
}

// NewWatcher creates a watcher for the given config file
// onChange is invoked with the freshly loaded configuration after each
// successful reload; failed reloads are logged and skipped
func NewWatcher(filePath string, onChange func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:       fsw,
		filePath:      filepath.Clean(filePath),
		onChange:      onChange,
		debounceDelay: 200 * time.Millisecond,
	}, nil
}

// Start begins watching for changes until ctx is cancelled
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.isWatching {
		w.mu.Unlock()
		return nil
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.isWatching = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	go w.watchEvents(ctx)

	slog.Info("Started config watcher", "path", w.filePath)

	return nil
}

// Stop stops watching and releases the underlying watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isWatching {
		return nil
	}

	w.cancel()
	w.isWatching = false

	return w.watcher.Close()
}

// watchEvents coalesces rapid fsnotify events and triggers reloads
func (w *Watcher) watchEvents(ctx context.Context) {
	var debounceTimer *time.Timer

	reload := func() {
		cfg, err := LoadConfig(w.filePath)
		if err != nil {
			slog.Error("Failed to reload config", "path", w.filePath, "error", err)
			return
		}

		slog.Info("Configuration reloaded", "path", w.filePath)
		if w.onChange != nil {
			w.onChange(cfg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.filePath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.debounceDelay, reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Config watcher error", "path", w.filePath, "error", err)
		}
	}
}
