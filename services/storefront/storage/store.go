// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storage provides the BadgerDB-backed local catalog store.
//
// BadgerDB gives the storefront an embedded key-value cache of the
// product catalog with low-latency access and no external service to
// run. The store holds the last known catalog (written after every
// successful remote fetch and after every checkout commit) plus the
// user records for the auth service.
//
// Key layout:
//
//	product:<id>    JSON-encoded storefront.Product
//	user:<email>    JSON-encoded auth user record
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"

	"github.com/tiendalabs/storefront/services/storefront"
)

const productPrefix = "product:"

// Config holds configuration for the store's BadgerDB instance.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required for persistent databases. Ignored when InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output.
	// If nil, BadgerDB's internal logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: durable synchronous writes
// at the given path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration for tests: in-memory, no sync.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens the store's BadgerDB instance.
//
// Description:
//
//	Opens BadgerDB at the configured path, or in memory when InMemory
//	is set. The directory is created if it does not exist.
//
// Inputs:
//
//	cfg - Store configuration. Path is required unless InMemory is true.
//
// Outputs:
//
//	*badger.DB - The opened database. Caller must Close() when done.
//	error - Non-nil if the path is invalid or the database cannot open.
//
// Thread Safety: The returned *badger.DB is safe for concurrent use.
func Open(cfg Config) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return db, nil
}

// CatalogStore is the local catalog cache over BadgerDB.
//
// Contract notes:
//
//   - ReadAll returns an empty slice, not an error, when the store has
//     never been written.
//   - WriteAll upserts by product id (replace-on-conflict) in a single
//     transaction.
//
// Thread Safety: Safe for concurrent use; BadgerDB transactions provide
// the isolation.
type CatalogStore struct {
	db *badger.DB
}

// NewCatalogStore wraps an open BadgerDB in a CatalogStore.
func NewCatalogStore(db *badger.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func productKey(id int) []byte {
	return []byte(productPrefix + strconv.Itoa(id))
}

// ReadAll returns every product in the store, ordered by id.
//
// Outputs:
//
//	[]storefront.Product - All cached products; empty when uninitialized.
//	error - Non-nil only for a storage-level failure, never for "no data".
func (s *CatalogStore) ReadAll(ctx context.Context) ([]storefront.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	products := []storefront.Product{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(productPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var p storefront.Product
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("decode product %s: %w", it.Item().Key(), err)
			}
			products = append(products, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

// WriteAll upserts the given products in one transaction. Products
// already in the store but absent from the slice are left in place.
func (s *CatalogStore) WriteAll(ctx context.Context, products []storefront.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		for _, p := range products {
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode product %d: %w", p.ID, err)
			}
			if err := txn.Set(productKey(p.ID), data); err != nil {
				return fmt.Errorf("write product %d: %w", p.ID, err)
			}
		}
		return nil
	})
}

// ReadOne returns the product with the given id.
//
// Outputs:
//
//	storefront.Product - The stored product (zero value when absent).
//	bool - Whether the product was found.
//	error - Non-nil only for storage-level failures.
func (s *CatalogStore) ReadOne(ctx context.Context, id int) (storefront.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return storefront.Product{}, false, err
	}

	var p storefront.Product
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(productKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return storefront.Product{}, false, fmt.Errorf("read product %d: %w", id, err)
	}
	return p, found, nil
}

// SetFavorite flips the favorite flag on a stored product.
//
// Outputs:
//
//	error - storefront.ErrProductNotFound when the id is not in the
//	store, otherwise storage-level failures.
func (s *CatalogStore) SetFavorite(ctx context.Context, id int, favorite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(productKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storefront.ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("read product %d: %w", id, err)
		}

		var p storefront.Product
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		}); err != nil {
			return fmt.Errorf("decode product %d: %w", id, err)
		}

		p.Favorite = favorite
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product %d: %w", id, err)
		}
		return txn.Set(productKey(id), data)
	})
}

// ReadFavorites returns all products flagged as favorites, ordered by id.
func (s *CatalogStore) ReadFavorites(ctx context.Context) ([]storefront.Product, error) {
	all, err := s.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	favorites := []storefront.Product{}
	for _, p := range all {
		if p.Favorite {
			favorites = append(favorites, p)
		}
	}
	return favorites, nil
}
