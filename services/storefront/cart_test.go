// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id, stock int, price float64) Product {
	return Product{
		ID:          id,
		Name:        "Product",
		Price:       price,
		Description: "test product",
		Category:    "Electronics",
		Stock:       stock,
	}
}

// checkInvariants asserts the ledger invariants hold for every line:
// 1 <= quantity <= stock snapshot, and no line with zero stock.
func checkInvariants(t *testing.T, l *Ledger) {
	t.Helper()
	for _, line := range l.Items() {
		assert.GreaterOrEqual(t, line.Quantity, 1,
			"line for product %d has quantity below 1", line.Product.ID)
		assert.LessOrEqual(t, line.Quantity, line.Product.Stock,
			"line for product %d exceeds its stock snapshot", line.Product.ID)
		assert.Greater(t, line.Product.Stock, 0,
			"line for product %d survived zero stock", line.Product.ID)
	}
}

// =============================================================================
// Add
// =============================================================================

func TestLedger_Add_NewLine(t *testing.T) {
	l := NewLedger()
	p := testProduct(1, 5, 10.0)

	require.True(t, l.Add(p, 3))

	items := l.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Product.ID)
	assert.Equal(t, 3, items[0].Quantity)
	assert.InDelta(t, 30.0, l.Total(), 1e-9)
	assert.Equal(t, 3, l.ItemCount())
	checkInvariants(t, l)
}

func TestLedger_Add_ExistingLineAccumulates(t *testing.T) {
	l := NewLedger()
	p := testProduct(1, 5, 10.0)

	require.True(t, l.Add(p, 2))
	require.True(t, l.Add(p, 2))

	line, ok := l.Line(1)
	require.True(t, ok)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_Add_ExistingLineOverStockFails(t *testing.T) {
	l := NewLedger()
	p := testProduct(1, 5, 10.0)

	require.True(t, l.Add(p, 3))
	// Requested total 6 > stock 5: hard failure, ledger unchanged.
	assert.False(t, l.Add(p, 3))

	line, _ := l.Line(1)
	assert.Equal(t, 3, line.Quantity)
	checkInvariants(t, l)
}

func TestLedger_Add_NewLineOverStockFails(t *testing.T) {
	l := NewLedger()
	p := testProduct(1, 2, 10.0)

	assert.False(t, l.Add(p, 3))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_Add_ZeroStockFails(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.Add(testProduct(1, 0, 10.0), 1))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_Add_ZeroQuantityZeroStockFails(t *testing.T) {
	// Without the sold-out guard the clamp floor would turn a zero
	// requested quantity into a quantity-1 line for a product with no
	// stock.
	l := NewLedger()
	assert.False(t, l.Add(testProduct(1, 0, 10.0), 0))
	assert.Equal(t, 0, l.Len())
}

func TestLedger_Add_RefreshesStockSnapshot(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 2))

	// Same product observed again with more stock.
	require.True(t, l.Add(testProduct(1, 8, 10.0), 1))

	line, _ := l.Line(1)
	assert.Equal(t, 8, line.Product.Stock)
	assert.Equal(t, 3, line.Quantity)
}

func TestLedger_Add_QuantityClampFloor(t *testing.T) {
	// The quantity-set clamp forces a floor of 1: an add of zero units
	// still creates a one-unit line. Preserved as observed behavior.
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 0))

	line, ok := l.Line(1)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	checkInvariants(t, l)
}

// =============================================================================
// UpdateQuantity
// =============================================================================

func TestLedger_UpdateQuantity(t *testing.T) {
	tests := []struct {
		name      string
		newQty    int
		want      bool
		wantQty   int
		wantGone  bool
		skipSetup bool
	}{
		{name: "within stock", newQty: 5, want: true, wantQty: 5},
		{name: "down to one", newQty: 1, want: true, wantQty: 1},
		{name: "zero removes line", newQty: 0, want: true, wantGone: true},
		{name: "above stock hard fails", newQty: 6, want: false, wantQty: 3},
		{name: "missing line fails", newQty: 2, want: false, skipSetup: true, wantGone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger()
			if !tt.skipSetup {
				require.True(t, l.Add(testProduct(1, 5, 10.0), 3))
			}

			assert.Equal(t, tt.want, l.UpdateQuantity(1, tt.newQty))

			line, ok := l.Line(1)
			if tt.wantGone {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, tt.wantQty, line.Quantity)
			}
			checkInvariants(t, l)
		})
	}
}

func TestLedger_UpdateQuantity_ZeroOnMissingLineFails(t *testing.T) {
	// The missing-line check comes before the zero-removes rule.
	l := NewLedger()
	assert.False(t, l.UpdateQuantity(42, 0))
}

// =============================================================================
// Remove / Clear
// =============================================================================

func TestLedger_Remove(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 1))
	require.True(t, l.Add(testProduct(2, 5, 20.0), 1))

	l.Remove(1)
	assert.Equal(t, 1, l.Len())
	_, ok := l.Line(1)
	assert.False(t, ok)

	// Missing key is a no-op, not an error.
	l.Remove(99)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_Clear(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 2))
	require.True(t, l.Add(testProduct(2, 5, 20.0), 1))

	l.Clear()

	assert.Equal(t, 0, l.Len())
	assert.Equal(t, 0, l.ItemCount())
	assert.Zero(t, l.Total())
	assert.Empty(t, l.Items())
}

// =============================================================================
// Aggregates and snapshots
// =============================================================================

func TestLedger_TotalAndItemCount(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 10, 2999.99), 2))
	require.True(t, l.Add(testProduct(2, 25, 49.99), 3))

	assert.InDelta(t, 2*2999.99+3*49.99, l.Total(), 1e-9)
	assert.Equal(t, 5, l.ItemCount())
}

func TestLedger_Items_IsSnapshotCopy(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 2))

	items := l.Items()
	items[0].Quantity = 99

	line, _ := l.Line(1)
	assert.Equal(t, 2, line.Quantity, "mutating the Items slice must not touch the ledger")
}

func TestLedger_Items_InsertionOrder(t *testing.T) {
	l := NewLedger()
	for _, id := range []int{3, 1, 2} {
		require.True(t, l.Add(testProduct(id, 5, 1.0), 1))
	}

	var ids []int
	for _, line := range l.Items() {
		ids = append(ids, line.Product.ID)
	}
	assert.Equal(t, []int{3, 1, 2}, ids)
}

// =============================================================================
// Reconcile
// =============================================================================

func TestLedger_Reconcile_ClampsQuantityToNewStock(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 4))

	l.Reconcile([]Product{testProduct(1, 2, 10.0)})

	line, ok := l.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 2, line.Product.Stock)
	checkInvariants(t, l)
}

func TestLedger_Reconcile_RemovesDepletedLines(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 2))

	l.Reconcile([]Product{testProduct(1, 0, 10.0)})

	_, ok := l.Line(1)
	assert.False(t, ok, "a depleted product must not keep a cart line")
	checkInvariants(t, l)
}

func TestLedger_Reconcile_MissingProductLeftUntouched(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 2))

	// Partial snapshot without product 1: no eviction.
	l.Reconcile([]Product{testProduct(2, 9, 1.0)})

	line, ok := l.Line(1)
	require.True(t, ok)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 5, line.Product.Stock)
}

func TestLedger_Reconcile_RaisedStockKeepsQuantity(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 4))

	l.Reconcile([]Product{testProduct(1, 50, 10.0)})

	line, _ := l.Line(1)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, 50, line.Product.Stock)
}

func TestLedger_Reconcile_Idempotent(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 4))
	require.True(t, l.Add(testProduct(2, 8, 20.0), 8))

	catalog := []Product{
		testProduct(1, 2, 10.0),
		testProduct(2, 3, 20.0),
		testProduct(3, 7, 5.0),
	}

	l.Reconcile(catalog)
	once := l.Items()

	l.Reconcile(catalog)
	twice := l.Items()

	assert.Equal(t, once, twice)
	checkInvariants(t, l)
}

// =============================================================================
// ValidateStock
// =============================================================================

func TestLedger_ValidateStock(t *testing.T) {
	l := NewLedger()
	require.True(t, l.Add(testProduct(1, 5, 10.0), 3))
	require.True(t, l.Add(testProduct(2, 5, 20.0), 2))

	tests := []struct {
		name    string
		catalog []Product
		want    bool
	}{
		{
			name:    "all lines satisfiable",
			catalog: []Product{testProduct(1, 3, 10.0), testProduct(2, 2, 20.0)},
			want:    true,
		},
		{
			name:    "one line short",
			catalog: []Product{testProduct(1, 2, 10.0), testProduct(2, 5, 20.0)},
			want:    false,
		},
		{
			name:    "missing product counts as zero stock",
			catalog: []Product{testProduct(1, 5, 10.0)},
			want:    false,
		},
		{
			name:    "empty catalog",
			catalog: nil,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.ValidateStock(tt.catalog))
		})
	}
}
