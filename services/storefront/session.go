// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tiendalabs/storefront/pkg/logging"
)

// CatalogStore is the local catalog cache contract.
//
// ReadAll must return an empty slice, never an error, when the store is
// simply uninitialized. WriteAll upserts by product id.
type CatalogStore interface {
	ReadAll(ctx context.Context) ([]Product, error)
	WriteAll(ctx context.Context, products []Product) error
	ReadOne(ctx context.Context, id int) (Product, bool, error)
	SetFavorite(ctx context.Context, id int, favorite bool) error
	ReadFavorites(ctx context.Context) ([]Product, error)
}

// CatalogFeed is the remote product feed contract: one fallible
// fetch-all, no pagination, no partial results.
type CatalogFeed interface {
	FetchAll(ctx context.Context) ([]Product, error)
}

// Session owns one cart ledger and the last-loaded catalog snapshot.
//
// The session replaces the global singleton cart of earlier designs: it
// is constructed explicitly, handed to the HTTP layer by reference, and
// its lifetime is the signed-in session. All ledger and catalog
// mutation is serialised behind one mutex; catalog I/O (feed fetch,
// store read/write) runs outside the lock and hands its result back to
// be applied under it. Concurrent load requests are collapsed into a
// single flight.
type Session struct {
	store  CatalogStore
	feed   CatalogFeed
	seed   []Product
	logger *logging.Logger

	flight singleflight.Group

	mu      sync.Mutex
	ledger  *Ledger
	catalog []Product
}

// SessionConfig configures a Session.
type SessionConfig struct {
	// Store is the local catalog cache. Required.
	Store CatalogStore

	// Feed is the remote product feed. Required.
	Feed CatalogFeed

	// Seed is the built-in catalog used when both the store and the
	// feed come up empty. Defaults to SeedCatalog().
	Seed []Product

	// Logger defaults to logging.Default().
	Logger *logging.Logger
}

// NewSession creates a session with an empty cart and no catalog loaded.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Seed == nil {
		cfg.Seed = SeedCatalog()
	}
	return &Session{
		store:  cfg.Store,
		feed:   cfg.Feed,
		seed:   cfg.Seed,
		logger: cfg.Logger,
		ledger: NewLedger(),
	}
}

// =============================================================================
// Catalog loading
// =============================================================================

// LoadCatalog loads the catalog local-first with remote fallback.
//
// Description:
//
//	Reads the local store first. When the store is empty or failing,
//	falls through to the remote feed; when the feed also fails, falls
//	back to the built-in seed catalog so the storefront always has
//	something to sell. Whatever catalog wins is applied: it becomes the
//	in-memory snapshot and the ledger is reconciled against it.
//
//	Concurrent callers share a single load; everyone gets the same
//	snapshot.
//
// Outputs:
//
//	[]Product - The applied catalog snapshot.
//	error - Effectively always nil: a failed local read falls through
//	to the feed, and feed failures are absorbed by the seed fallback.
func (s *Session) LoadCatalog(ctx context.Context) ([]Product, error) {
	v, err, _ := s.flight.Do("load", func() (interface{}, error) {
		local, err := s.store.ReadAll(ctx)
		if err != nil {
			s.logger.Warn("local catalog read failed, trying feed", "error", err.Error())
		} else if len(local) > 0 {
			s.logger.Info("catalog loaded from local store", "products", len(local))
			s.apply(local)
			return local, nil
		} else {
			s.logger.Info("local store empty, loading catalog from feed")
		}

		catalog, err := s.refresh(ctx)
		if err != nil {
			s.logger.Warn("feed unavailable, using seed catalog",
				"error", err.Error(), "products", len(s.seed))
			s.apply(s.seed)
			return s.seed, nil
		}
		return catalog, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Product), nil
}

// RefreshCatalog forces a fetch from the remote feed, bypassing the
// local-first path. Unlike LoadCatalog, a feed failure propagates to
// the caller; the in-memory catalog and ledger are left as they were.
func (s *Session) RefreshCatalog(ctx context.Context) ([]Product, error) {
	v, err, _ := s.flight.Do("refresh", func() (interface{}, error) {
		return s.refresh(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Product), nil
}

// refresh fetches from the feed, preserves locally-owned favorite
// flags, persists the result, and applies it.
func (s *Session) refresh(ctx context.Context) ([]Product, error) {
	fetched, err := s.feed.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info("catalog fetched from feed", "products", len(fetched))

	// The feed knows nothing about favorites; carry the flags over from
	// the store so a refresh doesn't wipe them.
	if stored, err := s.store.ReadAll(ctx); err == nil {
		favs := make(map[int]bool, len(stored))
		for _, p := range stored {
			if p.Favorite {
				favs[p.ID] = true
			}
		}
		for i := range fetched {
			if favs[fetched[i].ID] {
				fetched[i].Favorite = true
			}
		}
	}

	if err := s.store.WriteAll(ctx, fetched); err != nil {
		s.logger.Warn("caching fetched catalog failed", "error", err.Error())
	}

	s.apply(fetched)
	return fetched, nil
}

// ReplaceCatalog installs an externally supplied catalog, persists it,
// and reconciles the ledger against it. Used by the seed file watcher
// and by operator-driven catalog overrides.
func (s *Session) ReplaceCatalog(ctx context.Context, catalog []Product) error {
	if err := s.store.WriteAll(ctx, catalog); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	s.apply(catalog)
	s.logger.Info("catalog replaced", "products", len(catalog))
	return nil
}

// apply installs a catalog snapshot and reconciles the ledger against
// it. This is the only place the in-memory catalog changes outside of
// checkout.
func (s *Session) apply(catalog []Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
	s.ledger.Reconcile(catalog)
}

// =============================================================================
// Catalog reads
// =============================================================================

// Products returns a copy of the last-loaded catalog snapshot.
func (s *Session) Products() []Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Product(nil), s.catalog...)
}

// Product returns one product from the in-memory snapshot.
func (s *Session) Product(id int) (Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findProduct(s.catalog, id)
}

// SetFavorite persists a favorite flag and mirrors it into the
// in-memory snapshot.
func (s *Session) SetFavorite(ctx context.Context, id int, favorite bool) error {
	if err := s.store.SetFavorite(ctx, id, favorite); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.catalog {
		if s.catalog[i].ID == id {
			s.catalog[i].Favorite = favorite
			break
		}
	}
	return nil
}

// Favorites returns the favorite products from the local store.
func (s *Session) Favorites(ctx context.Context) ([]Product, error) {
	return s.store.ReadFavorites(ctx)
}

// =============================================================================
// Cart operations
// =============================================================================

// AddToCart puts qty units of a catalog product into the cart.
//
// Outputs:
//
//	bool - false when stock is insufficient (the ledger's hard-failure
//	rule for accumulating adds).
//	error - ErrProductNotFound when the id is not in the loaded catalog.
func (s *Session) AddToCart(id, qty int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, found := findProduct(s.catalog, id)
	if !found {
		return false, ErrProductNotFound
	}
	return s.ledger.Add(p, qty), nil
}

// UpdateCartQuantity assigns an absolute quantity to a cart line. See
// Ledger.UpdateQuantity for the zero-removes and hard-failure rules.
func (s *Session) UpdateCartQuantity(id, qty int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.UpdateQuantity(id, qty)
}

// RemoveFromCart drops a cart line. No-op when absent.
func (s *Session) RemoveFromCart(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Remove(id)
}

// ClearCart empties the cart.
func (s *Session) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
}

// CartItems returns a snapshot of the cart lines in insertion order.
func (s *Session) CartItems() []CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Items()
}

// CartLine returns one cart line by product id.
func (s *Session) CartLine(id int) (CartLine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Line(id)
}

// CartTotal returns the cart's total price.
func (s *Session) CartTotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Total()
}

// CartCount returns the total number of units in the cart.
func (s *Session) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.ItemCount()
}

// Logout ends the cart session: the ledger is cleared. Auth sign-out is
// the caller's concern; the session only owns cart state.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
	s.logger.Info("session cart cleared on logout")
}
