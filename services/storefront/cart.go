// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

// Ledger is the in-memory cart: a mapping of product id to CartLine with
// insertion order retained for display.
//
// Invariants, for every line in the ledger:
//
//	1 <= Quantity <= Product.Stock (the snapshot stock)
//
// and no line exists for a product whose reconciled stock is zero. A
// quantity dropping to zero removes the line; it is never retained.
//
// The ledger is transient. It starts empty, is never persisted, and is
// cleared after a successful checkout and on logout.
//
// Thread Safety: Ledger is NOT safe for concurrent use. The owning
// Session serialises access behind its mutex.
type Ledger struct {
	lines map[int]CartLine
	order []int // product ids in insertion order
}

// NewLedger creates an empty cart ledger.
func NewLedger() *Ledger {
	return &Ledger{lines: make(map[int]CartLine)}
}

// Add puts quantity units of a product into the cart.
//
// Description:
//
//	If the product already has a line, the new total quantity is the
//	existing quantity plus qty; the add fails when that total exceeds
//	the product's stock. For a new line the add fails when stock is
//	below qty. On success the line's stock snapshot is refreshed from
//	the given product and the quantity is assigned under the clamp
//	rule (forced into [1, stock]).
//
// Inputs:
//
//	p - The catalog product to add. p.Stock is taken as authoritative.
//	qty - Units to add. Callers normally pass 1.
//
// Outputs:
//
//	bool - true if the cart was updated, false if stock was insufficient
//	(in which case the ledger is untouched).
func (l *Ledger) Add(p Product, qty int) bool {
	if existing, ok := l.lines[p.ID]; ok {
		newQty := existing.Quantity + qty
		if newQty > p.Stock {
			return false
		}
		existing.Product.Stock = p.Stock
		l.lines[p.ID] = existing.withQuantity(newQty)
		return true
	}

	if p.Stock == 0 || p.Stock < qty {
		return false
	}
	line := CartLine{Product: p}
	l.lines[p.ID] = line.withQuantity(qty)
	l.order = append(l.order, p.ID)
	return true
}

// UpdateQuantity assigns an absolute quantity to an existing line.
//
// Description:
//
//	A quantity of zero removes the line and reports success. A quantity
//	above the line's stock snapshot is a hard failure with no partial
//	update; unlike Add's clamp rule nothing is adjusted downward here.
//	The asymmetry is deliberate and matches observed product behavior.
//
// Outputs:
//
//	bool - false when no line exists for the id or the quantity exceeds
//	stock, true otherwise.
func (l *Ledger) UpdateQuantity(id, qty int) bool {
	line, ok := l.lines[id]
	if !ok {
		return false
	}
	switch {
	case qty == 0:
		l.Remove(id)
		return true
	case qty <= line.Product.Stock:
		l.lines[id] = line.withQuantity(qty)
		return true
	default:
		return false
	}
}

// Remove drops the line for a product id. No-op when absent.
func (l *Ledger) Remove(id int) {
	if _, ok := l.lines[id]; !ok {
		return
	}
	delete(l.lines, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Clear empties the ledger. Used after a successful checkout and on logout.
func (l *Ledger) Clear() {
	l.lines = make(map[int]CartLine)
	l.order = nil
}

// Line returns the cart line for a product id.
func (l *Ledger) Line(id int) (CartLine, bool) {
	line, ok := l.lines[id]
	return line, ok
}

// Items returns a snapshot copy of all lines in insertion order.
// Mutating the returned slice does not affect the ledger.
func (l *Ledger) Items() []CartLine {
	items := make([]CartLine, 0, len(l.order))
	for _, id := range l.order {
		if line, ok := l.lines[id]; ok {
			items = append(items, line)
		}
	}
	return items
}

// Len returns the number of lines in the cart.
func (l *Ledger) Len() int {
	return len(l.lines)
}

// Total returns the sum of extended line prices.
func (l *Ledger) Total() float64 {
	var total float64
	for _, line := range l.lines {
		total += line.LineTotal()
	}
	return total
}

// ItemCount returns the sum of line quantities.
func (l *Ledger) ItemCount() int {
	var count int
	for _, line := range l.lines {
		count += line.Quantity
	}
	return count
}

// Reconcile synchronises the ledger against a freshly loaded catalog.
//
// Description:
//
//	One-directional, catalog to ledger, in a single pass over the
//	existing lines (never over the incoming snapshot). For each line:
//
//	  1. The matching catalog product is looked up by id. A line whose
//	     product is absent from the snapshot is left untouched; catalog
//	     loads may be partial and absence is not eviction.
//	  2. The line's stock snapshot is overwritten with the catalog stock.
//	  3. A quantity now above the new stock is clamped down to it (the
//	     clamp rule keeps a floor of 1).
//	  4. A line whose new stock is exactly zero is removed outright.
//
//	Reconcile is idempotent: a second pass over the same snapshot leaves
//	the ledger unchanged.
func (l *Ledger) Reconcile(catalog []Product) {
	for _, id := range append([]int(nil), l.order...) {
		line, ok := l.lines[id]
		if !ok {
			continue
		}
		p, found := findProduct(catalog, id)
		if !found {
			continue
		}
		if p.Stock == 0 {
			l.Remove(id)
			continue
		}
		line.Product.Stock = p.Stock
		if line.Quantity > p.Stock {
			line = line.withQuantity(p.Stock)
		}
		l.lines[id] = line
	}
}

// ValidateStock reports whether every cart line can be satisfied by the
// given catalog snapshot. A line whose product is missing from the
// snapshot counts as zero available stock and fails validation.
func (l *Ledger) ValidateStock(catalog []Product) bool {
	for _, line := range l.lines {
		p, found := findProduct(catalog, line.Product.ID)
		if !found || p.Stock < line.Quantity {
			return false
		}
	}
	return true
}
