// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storefront implements the cart and catalog core of the Tienda
// storefront: the in-memory cart ledger, its reconciliation against the
// product catalog, and the checkout orchestration that commits stock
// deltas back to the catalog store.
//
// The package is organised around three pieces:
//
//   - Ledger: the in-memory cart, a mapping of product id to CartLine
//     (cart.go). Pure in-memory logic, no I/O, not safe for concurrent
//     use on its own.
//   - Session: the owner of one ledger plus the last-loaded catalog
//     (session.go). All mutation is serialised behind its mutex; catalog
//     loads run outside the lock and apply their results under it.
//   - Checkout: the purchase orchestration (checkout.go), which validates
//     the ledger against the catalog, persists stock deltas, and clears
//     the ledger on success.
//
// Thread Safety:
//
//	Session is safe for concurrent use. Ledger is not; it must only be
//	touched while holding the owning Session's lock.
package storefront

// Product is one catalog record. The catalog store and the remote feed
// both speak this shape; Stock is the authoritative available quantity.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Stock       int     `json:"stock"`
	Rating      float32 `json:"rating"`
	ReviewCount int     `json:"reviewCount"`
	Favorite    bool    `json:"isFavorite"`
}

// CartLine is one cart entry: a product snapshot taken when the product
// entered the cart, plus the requested quantity.
//
// CartLine is a value. The ledger never hands out pointers into its own
// state and never mutates a line in place; every update replaces the
// line wholesale. The snapshot's Stock field tracks the most recently
// reconciled catalog stock, not the stock at add time.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// LineTotal returns the extended price of the line.
func (l CartLine) LineTotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// withQuantity returns a copy of the line with the quantity assigned
// under the ledger's clamp rule: quantities are always forced into
// [1, stock]. Requesting more than the snapshot stock clamps down
// rather than failing; UpdateQuantity layers its hard-failure check on
// top of this before calling it.
func (l CartLine) withQuantity(q int) CartLine {
	l.Quantity = clampQuantity(q, l.Product.Stock)
	return l
}

// clampQuantity forces q into [1, stock].
func clampQuantity(q, stock int) int {
	if q > stock {
		q = stock
	}
	if q < 1 {
		q = 1
	}
	return q
}

// findProduct returns the product with the given id from a catalog
// snapshot, or false when the snapshot does not contain it.
func findProduct(catalog []Product, id int) (Product, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
