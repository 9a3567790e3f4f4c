// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutState_String(t *testing.T) {
	tests := []struct {
		state CheckoutState
		want  string
	}{
		{CheckoutIdle, "idle"},
		{CheckoutValidating, "validating"},
		{CheckoutCommitting, "committing"},
		{CheckoutCommitted, "committed"},
		{CheckoutRejected, "rejected"},
		{CheckoutState(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}

func TestSession_Checkout_Success(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0), testProduct(2, 8, 20.0), testProduct(3, 4, 7.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 3)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = s.AddToCart(2, 2)
	require.NoError(t, err)
	require.True(t, ok)

	receipt, err := s.Checkout(ctx)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, receipt.ID)
	assert.Equal(t, 5, receipt.ItemCount)
	assert.InDelta(t, 3*10.0+2*20.0, receipt.Total, 1e-9)
	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, 1, receipt.Lines[0].ProductID)
	assert.Equal(t, 3, receipt.Lines[0].Quantity)
	assert.InDelta(t, 30.0, receipt.Lines[0].LineTotal, 1e-9)
	assert.False(t, receipt.CreatedAt.IsZero())

	// Ledger ends empty.
	assert.Zero(t, s.CartCount())
	assert.Empty(t, s.CartItems())

	// Stock decreased in the persisted catalog and in memory; the
	// untouched product passed through unchanged.
	assert.Equal(t, 2, store.stock(1))
	assert.Equal(t, 6, store.stock(2))
	assert.Equal(t, 4, store.stock(3))

	products := s.Products()
	require.Len(t, products, 3)
	assert.Equal(t, 2, products[0].Stock)
	assert.Equal(t, 6, products[1].Stock)
	assert.Equal(t, 4, products[2].Stock)
}

func TestSession_Checkout_EmptyCart(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	_, err := s.LoadCatalog(context.Background())
	require.NoError(t, err)

	writesBefore := store.writes
	_, err = s.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, writesBefore, store.writes, "an empty-cart rejection must not write")
}

func TestSession_Checkout_DepletedLineRemovedBeforeCheckout(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 1)
	require.NoError(t, err)
	require.True(t, ok)

	// A fresh snapshot shows the product sold out; reconciliation drops
	// the line, so checkout sees an empty cart rather than a stale one.
	s.apply([]Product{testProduct(1, 0, 10.0)})

	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSession_Checkout_InsufficientStock_LedgerUntouched(t *testing.T) {
	// Build a stale-cart scenario directly against the ledger: the
	// line wants 3 units, the catalog only has 2.
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 3)
	require.NoError(t, err)
	require.True(t, ok)

	// Swap the in-memory snapshot to stock=2 without reconciling, the
	// state a half-loaded refresh would leave behind.
	s.mu.Lock()
	s.catalog = []Product{testProduct(1, 2, 10.0)}
	s.mu.Unlock()

	writesBefore := store.writes
	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// No partial commit: store untouched, cart unchanged.
	assert.Equal(t, writesBefore, store.writes)
	line, found := s.CartLine(1)
	require.True(t, found)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 5, store.stock(1))
}

func TestSession_Checkout_MissingProductCountsAsZeroStock(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 1)
	require.NoError(t, err)
	require.True(t, ok)

	// The product vanishes from the snapshot entirely (partial load).
	s.mu.Lock()
	s.catalog = []Product{testProduct(2, 9, 1.0)}
	s.mu.Unlock()

	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestSession_Checkout_SaveFailure(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 2)
	require.NoError(t, err)
	require.True(t, ok)

	store.writeErr = errors.New("disk full")
	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrSaveFailed)

	// Ledger left exactly as it was.
	line, found := s.CartLine(1)
	require.True(t, found)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 5, store.stock(1))

	// A later attempt with a healthy store succeeds.
	store.writeErr = nil
	receipt, err := s.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, receipt.ItemCount)
	assert.Equal(t, 3, store.stock(1))
}

func TestSession_Checkout_DoubleCheckoutRejected(t *testing.T) {
	store := newMemStore(testProduct(1, 5, 10.0))
	s := newTestSession(store, &stubFeed{})
	ctx := context.Background()
	_, err := s.LoadCatalog(ctx)
	require.NoError(t, err)

	ok, err := s.AddToCart(1, 2)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.Checkout(ctx)
	require.NoError(t, err)

	// The cart is empty now; a second attempt is an empty-cart rejection.
	_, err = s.Checkout(ctx)
	assert.ErrorIs(t, err, ErrEmptyCart)
}
