// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tiendalabs/storefront/pkg/logging"
)

// DefaultDebounceWindow is how long the seed watcher waits for further
// writes before reloading. Editors and config management tools tend to
// write a file several times in quick succession.
const DefaultDebounceWindow = 200 * time.Millisecond

// seedDocument is the on-disk seed file shape. A bare JSON array of
// products is also accepted.
type seedDocument struct {
	Products []Product `json:"products"`
}

// LoadSeedFile reads a catalog from a JSON seed file.
//
// Description:
//
//	The file may hold either {"products": [...]} or a bare product
//	array. Unlike the remote feed, a malformed seed file is an error:
//	the file is operator-managed and silence would hide a typo.
func LoadSeedFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var doc seedDocument
	if err := json.Unmarshal(data, &doc); err == nil && doc.Products != nil {
		return doc.Products, nil
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return products, nil
}

// SeedWatcher reloads the catalog when the seed file changes.
//
// Description:
//
//	Watches the seed file's directory (editors replace files rather
//	than writing them in place, which drops inotify watches on the
//	file itself) and debounces bursts of writes. Each reload replaces
//	the catalog and reconciles the cart against it.
type SeedWatcher struct {
	path    string
	session *Session
	logger  *logging.Logger

	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

// NewSeedWatcher creates a watcher for the given seed file.
func NewSeedWatcher(path string, session *Session, logger *logging.Logger) (*SeedWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &SeedWatcher{
		path:     filepath.Clean(path),
		session:  session,
		logger:   logger,
		watcher:  watcher,
		debounce: DefaultDebounceWindow,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The watch loop exits when Stop is called or
// the context is canceled.
func (w *SeedWatcher) Start(ctx context.Context) error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch seed directory: %w", err)
	}
	go w.loop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call more than once.
func (w *SeedWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.watcher.Close()
	})
}

func (w *SeedWatcher) loop(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("seed watcher error", "error", err.Error())
		case <-fire:
			timer = nil
			fire = nil
			w.reload(ctx)
		}
	}
}

func (w *SeedWatcher) reload(ctx context.Context) {
	products, err := LoadSeedFile(w.path)
	if err != nil {
		w.logger.Warn("seed reload skipped", "path", w.path, "error", err.Error())
		return
	}
	if err := w.session.ReplaceCatalog(ctx, products); err != nil {
		w.logger.Error("seed reload failed", "path", w.path, "error", err.Error())
		return
	}
	w.logger.Info("seed file reloaded", "path", w.path, "products", len(products))
}
