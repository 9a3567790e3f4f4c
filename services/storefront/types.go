// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import "github.com/tiendalabs/storefront/services/storefront/auth"

// ServiceVersion is the storefront service version.
const ServiceVersion = "0.1.0"

// ErrorResponse is the standard error envelope returned by all
// endpoints on failure.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ProductsResponse is returned by GET /v1/store/products.
type ProductsResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// RefreshResponse is returned by POST /v1/store/refresh.
type RefreshResponse struct {
	Products []Product `json:"products"`
	Count    int       `json:"count"`
}

// FavoriteRequest is the body of PUT /v1/store/products/:id/favorite.
type FavoriteRequest struct {
	Favorite *bool `json:"favorite" binding:"required"`
}

// AddToCartRequest is the body of POST /v1/store/cart/items. An
// omitted quantity means one unit.
type AddToCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"omitempty,min=0"`
}

// UpdateCartItemRequest is the body of PUT /v1/store/cart/items/:id.
// Quantity zero removes the line.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0"`
}

// CartResponse is returned by the cart read endpoints.
type CartResponse struct {
	Items     []CartLine `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// CheckoutResponse is returned by POST /v1/store/checkout.
type CheckoutResponse struct {
	Receipt Receipt `json:"receipt"`
}

// SignUpRequest is the body of POST /v1/auth/signup.
type SignUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// SignInRequest is the body of POST /v1/auth/signin.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IdentityResponse is returned by the auth endpoints that resolve to a
// signed-in user.
type IdentityResponse struct {
	User auth.Identity `json:"user"`
}

// HealthResponse is returned by GET /v1/store/health.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	CatalogSize int    `json:"catalog_size"`
	CartItems   int    `json:"cart_items"`
}
