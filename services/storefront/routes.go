// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all storefront routes with the router.
//
// Description:
//
//	Registers the /v1/store/* and /v1/auth/* endpoints with the given
//	Gin router group. The router group should already have any required
//	middleware applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Catalog Endpoints:
//
//	GET  /v1/store/products - List the catalog
//	GET  /v1/store/products/:id - Read one product
//	POST /v1/store/refresh - Refresh the catalog from the remote feed
//	PUT  /v1/store/products/:id/favorite - Toggle a favorite flag
//	GET  /v1/store/favorites - List favorited products
//
// Cart Endpoints:
//
//	GET    /v1/store/cart - Read the cart
//	POST   /v1/store/cart/items - Add a product to the cart
//	PUT    /v1/store/cart/items/:id - Set an absolute line quantity
//	DELETE /v1/store/cart/items/:id - Remove a cart line
//	DELETE /v1/store/cart - Clear the cart
//	POST   /v1/store/checkout - Commit the cart
//
// Auth Endpoints:
//
//	POST /v1/auth/signup - Register and sign in
//	POST /v1/auth/signin - Sign in
//	POST /v1/auth/signout - Sign out and clear the cart
//	GET  /v1/auth/me - Current user
//
// Health Endpoints:
//
//	GET /v1/store/health - Health check
//
// Example:
//
//	session := storefront.NewSession(cfg)
//	handlers := storefront.NewHandlers(session, authSvc)
//
//	v1 := router.Group("/v1")
//	storefront.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	store := rg.Group("/store")
	{
		// Catalog
		store.GET("/products", handlers.HandleProducts)
		store.GET("/products/:id", handlers.HandleProduct)
		store.POST("/refresh", handlers.HandleRefresh)
		store.PUT("/products/:id/favorite", handlers.HandleFavorite)
		store.GET("/favorites", handlers.HandleFavorites)

		// Cart
		store.GET("/cart", handlers.HandleCart)
		store.POST("/cart/items", handlers.HandleAddToCart)
		store.PUT("/cart/items/:id", handlers.HandleUpdateCartItem)
		store.DELETE("/cart/items/:id", handlers.HandleRemoveCartItem)
		store.DELETE("/cart", handlers.HandleClearCart)
		store.POST("/checkout", handlers.HandleCheckout)

		// Health
		store.GET("/health", handlers.HandleHealth)
	}

	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", handlers.HandleSignUp)
		authGroup.POST("/signin", handlers.HandleSignIn)
		authGroup.POST("/signout", handlers.HandleSignOut)
		authGroup.GET("/me", handlers.HandleMe)
	}
}
