// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/moderato-app/talk-client/internal/util"
)

// reloadDebounce coalesces the bursts of write events editors emit when
// saving a file.
const reloadDebounce = 250 * time.Millisecond

// Watcher reloads the configuration when the file changes on disk.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	reload   *util.Debouncer
	onReload func(*Config)
	done     chan struct{}
}

// Watch begins watching path and invokes onReload with each successfully
// reloaded config. A change that fails to load or validate is logged and
// skipped; the previous config stays in effect.
func Watch(path string, onReload func(*Config)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watch the directory, not the file: atomic saves replace the inode
	// and a file-level watch would go stale after the first reload.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:     path,
		fsw:      fsw,
		onReload: onReload,
		done:     make(chan struct{}),
	}
	w.reload = util.NewDebouncer(reloadDebounce, util.EdgeTrailing, w.doReload)

	go w.loop()
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	w.reload.Stop()
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload.Call()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("WARNING: config watcher error: %v", err)
		}
	}
}

func (w *Watcher) doReload() {
	cfg, err := LoadFromPath(w.path)
	if err != nil {
		log.Printf("ERROR: config reload failed, keeping previous config: %v", err)
		return
	}
	log.Printf("config reloaded from %s", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
