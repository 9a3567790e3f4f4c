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
	"time"

	"github.com/google/uuid"
)

// CheckoutState tracks where a checkout attempt is in its lifecycle.
// A single attempt moves Idle -> Validating -> Committing -> Committed,
// or stops in Rejected. States exist for logging and result reporting;
// there is no retry and no resumption.
type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	CheckoutValidating
	CheckoutCommitting
	CheckoutCommitted
	CheckoutRejected
)

// String returns the state name for logs.
func (st CheckoutState) String() string {
	switch st {
	case CheckoutIdle:
		return "idle"
	case CheckoutValidating:
		return "validating"
	case CheckoutCommitting:
		return "committing"
	case CheckoutCommitted:
		return "committed"
	case CheckoutRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ReceiptLine is one purchased line on a receipt.
type ReceiptLine struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	LineTotal float64 `json:"lineTotal"`
}

// Receipt reports one successful checkout. It is built from the ledger
// at commit time, before the cart is cleared.
type Receipt struct {
	ID        uuid.UUID     `json:"id"`
	Lines     []ReceiptLine `json:"lines"`
	Total     float64       `json:"total"`
	ItemCount int           `json:"itemCount"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Checkout runs one purchase attempt over the current cart.
//
// Description:
//
//	The orchestration validates the ledger against the last-loaded
//	in-memory catalog (not a fresh fetch), computes per-product stock
//	deltas, persists the full updated catalog, and on success installs
//	the updated catalog, reconciles, and clears the cart. Rejections
//	leave ledger and catalog exactly as they were; no partial commit is
//	ever observable.
//
//	Rejection reasons, in check order:
//
//	  - ErrEmptyCart: the ledger has no lines.
//	  - ErrInsufficientStock: some line wants more units than the
//	    catalog has; a product missing from the catalog counts as zero
//	    available stock.
//	  - ErrSaveFailed (wrapped): the catalog store rejected the write.
//
// Outputs:
//
//	Receipt - The purchase receipt; zero value on rejection.
//	error - One of the sentinels above, or a wrap of ErrSaveFailed.
//
// Thread Safety: Safe for concurrent use. The session lock is held for
// the whole attempt, so cart mutations cannot interleave with a commit.
func (s *Session) Checkout(ctx context.Context) (Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := CheckoutValidating
	s.logger.Info("checkout started",
		"state", state.String(),
		"lines", s.ledger.Len(),
		"items", s.ledger.ItemCount(),
	)

	if s.ledger.Len() == 0 {
		s.logger.Info("checkout rejected", "state", CheckoutRejected.String(), "reason", ErrEmptyCart.Error())
		return Receipt{}, ErrEmptyCart
	}

	if !s.ledger.ValidateStock(s.catalog) {
		s.logger.Info("checkout rejected", "state", CheckoutRejected.String(), "reason", ErrInsufficientStock.Error())
		return Receipt{}, ErrInsufficientStock
	}

	// Stock deltas: products with a cart line lose the purchased units,
	// everything else passes through unchanged.
	updated := make([]Product, len(s.catalog))
	for i, p := range s.catalog {
		if line, ok := s.ledger.Line(p.ID); ok {
			p.Stock -= line.Quantity
		}
		updated[i] = p
	}

	state = CheckoutCommitting
	s.logger.Info("checkout committing", "state", state.String(), "products", len(updated))

	if err := s.store.WriteAll(ctx, updated); err != nil {
		s.logger.Error("checkout commit failed",
			"state", CheckoutRejected.String(), "error", err.Error())
		return Receipt{}, fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}

	receipt := s.buildReceipt()
	s.catalog = updated
	s.ledger.Reconcile(updated)
	s.ledger.Clear()

	s.logger.Info("checkout committed",
		"state", CheckoutCommitted.String(),
		"receipt_id", receipt.ID.String(),
		"total", receipt.Total,
		"items", receipt.ItemCount,
	)
	return receipt, nil
}

// buildReceipt snapshots the current ledger into a receipt. Caller
// holds the session lock.
func (s *Session) buildReceipt() Receipt {
	items := s.ledger.Items()
	lines := make([]ReceiptLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, ReceiptLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: item.LineTotal(),
		})
	}
	return Receipt{
		ID:        uuid.New(),
		Lines:     lines,
		Total:     s.ledger.Total(),
		ItemCount: s.ledger.ItemCount(),
		CreatedAt: time.Now().UTC(),
	}
}
