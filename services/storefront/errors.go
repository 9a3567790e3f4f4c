// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import "errors"

// Sentinel errors for the storefront core.
//
// Ledger operations themselves signal failure through boolean returns;
// these sentinels are for the session and checkout layers, where callers
// need to distinguish rejection reasons.
var (
	// ErrEmptyCart indicates checkout was requested with no cart lines.
	ErrEmptyCart = errors.New("empty cart")

	// ErrInsufficientStock indicates a cart line requests more units than
	// the catalog currently has available.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrSaveFailed indicates the catalog store rejected the stock update.
	ErrSaveFailed = errors.New("failed to save changes")

	// ErrProductNotFound indicates a catalog lookup for an unknown product id.
	ErrProductNotFound = errors.New("product not found")

	// ErrLineNotFound indicates a cart operation referenced a product with
	// no line in the ledger.
	ErrLineNotFound = errors.New("cart line not found")

	// ErrFeedUnavailable indicates the remote catalog feed could not be
	// reached or answered with a non-success status. Callers fall back to
	// the local store or the seed catalog.
	ErrFeedUnavailable = errors.New("catalog feed unavailable")
)
