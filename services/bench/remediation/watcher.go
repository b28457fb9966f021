// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package remediation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce batches rapid rewrites of the results file (benchmark
// runs write it in one shot, but editors and copies may not).
const defaultDebounce = 500 * time.Millisecond

// WatchHandler is invoked once per debounced rewrite of the watched file.
type WatchHandler func(path string)

// Watcher re-triggers analysis whenever a results file is rewritten.
//
// # Description
//
// Watches the file's parent directory (watching the file itself breaks on
// rename-replace writes) and debounces events so a burst of writes fires
// the handler once. The handler runs on the watcher's goroutine; Watch
// returns when the context is cancelled.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  WatchHandler
	log      *slog.Logger
}

// NewWatcher creates a watcher for the given results file.
func NewWatcher(path string, handler WatchHandler, log *slog.Logger) *Watcher {
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: defaultDebounce,
		handler:  handler,
		log:      log,
	}
}

// Watch blocks, invoking the handler after each debounced rewrite, until
// the context is cancelled.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.log.Info("watching results file", "path", w.path, "debounce", w.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timerC = nil
			timer = nil
			w.log.Debug("results file rewritten, re-running analysis", "path", w.path)
			w.handler(w.path)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}
