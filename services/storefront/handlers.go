// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tiendalabs/storefront/services/storefront/auth"
)

// Handlers contains the HTTP handlers for the storefront service.
type Handlers struct {
	session *Session
	auth    *auth.Service
}

// NewHandlers creates handlers for the given session and auth service.
func NewHandlers(session *Session, authSvc *auth.Service) *Handlers {
	return &Handlers{session: session, auth: authSvc}
}

// HandleProducts handles GET /v1/store/products.
//
// Description:
//
//	Returns the current catalog. Loads it first when no catalog has
//	been loaded yet, preferring the local cache over the remote feed.
//
// Response:
//
//	200 OK: ProductsResponse
//	500 Internal Server Error: Load error
func (h *Handlers) HandleProducts(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleProducts")

	products, err := h.session.LoadCatalog(c.Request.Context())
	if err != nil {
		logger.Error("Catalog load failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "CATALOG_LOAD_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

// HandleProduct handles GET /v1/store/products/:id.
//
// Response:
//
//	200 OK: the Product
//	400 Bad Request: Non-numeric id
//	404 Not Found: Unknown product
func (h *Handlers) HandleProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid product id",
			Code:  "INVALID_PRODUCT_ID",
		})
		return
	}

	product, found := h.session.Product(id)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrProductNotFound.Error(),
			Code:  "PRODUCT_NOT_FOUND",
		})
		return
	}
	c.JSON(http.StatusOK, product)
}

// HandleRefresh handles POST /v1/store/refresh.
//
// Description:
//
//	Forces a catalog refresh from the remote feed, bypassing the local
//	cache. Cart lines are reconciled against the refreshed catalog.
//
// Response:
//
//	200 OK: RefreshResponse
//	502 Bad Gateway: Feed unreachable
func (h *Handlers) HandleRefresh(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleRefresh")

	products, err := h.session.RefreshCatalog(c.Request.Context())
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "REFRESH_FAILED"
		if errors.Is(err, ErrFeedUnavailable) {
			statusCode = http.StatusBadGateway
			errCode = "FEED_UNAVAILABLE"
		}

		logger.Error("Catalog refresh failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Catalog refreshed", "count", len(products))
	c.JSON(http.StatusOK, RefreshResponse{Products: products, Count: len(products)})
}

// HandleFavorite handles PUT /v1/store/products/:id/favorite.
//
// Request Body:
//
//	FavoriteRequest
//
// Response:
//
//	200 OK: the updated Product
//	400 Bad Request: Validation error
//	404 Not Found: Unknown product
func (h *Handlers) HandleFavorite(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFavorite")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid product id",
			Code:  "INVALID_PRODUCT_ID",
		})
		return
	}

	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.session.SetFavorite(c.Request.Context(), id, *req.Favorite); err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "FAVORITE_FAILED"
		if errors.Is(err, ErrProductNotFound) {
			statusCode = http.StatusNotFound
			errCode = "PRODUCT_NOT_FOUND"
		}

		logger.Error("Favorite update failed", "product_id", id, "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	product, _ := h.session.Product(id)
	c.JSON(http.StatusOK, product)
}

// HandleFavorites handles GET /v1/store/favorites.
func (h *Handlers) HandleFavorites(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleFavorites")

	products, err := h.session.Favorites(c.Request.Context())
	if err != nil {
		logger.Error("Favorites read failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: err.Error(),
			Code:  "FAVORITES_FAILED",
		})
		return
	}

	c.JSON(http.StatusOK, ProductsResponse{Products: products, Count: len(products)})
}

// HandleCart handles GET /v1/store/cart.
func (h *Handlers) HandleCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse())
}

// HandleAddToCart handles POST /v1/store/cart/items.
//
// Description:
//
//	Adds a product to the cart, accumulating with any existing line.
//	A combined quantity above the product's stock is rejected without
//	changing the cart.
//
// Request Body:
//
//	AddToCartRequest
//
// Response:
//
//	200 OK: CartResponse
//	400 Bad Request: Validation error
//	404 Not Found: Unknown product
//	409 Conflict: Insufficient stock
func (h *Handlers) HandleAddToCart(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleAddToCart")

	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}
	ok, err := h.session.AddToCart(req.ProductID, qty)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "ADD_FAILED"
		if errors.Is(err, ErrProductNotFound) {
			statusCode = http.StatusNotFound
			errCode = "PRODUCT_NOT_FOUND"
		}

		logger.Warn("Add to cart failed", "product_id", req.ProductID, "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}
	if !ok {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrInsufficientStock.Error(),
			Code:  "INSUFFICIENT_STOCK",
		})
		return
	}

	logger.Info("Added to cart", "product_id", req.ProductID, "quantity", req.Quantity)
	c.JSON(http.StatusOK, h.cartResponse())
}

// HandleUpdateCartItem handles PUT /v1/store/cart/items/:id.
//
// Description:
//
//	Assigns an absolute quantity to a cart line. Quantity zero removes
//	the line; a quantity above the product's stock is rejected without
//	changing the cart.
//
// Request Body:
//
//	UpdateCartItemRequest
//
// Response:
//
//	200 OK: CartResponse
//	400 Bad Request: Validation error
//	404 Not Found: No cart line for the product
//	409 Conflict: Insufficient stock
func (h *Handlers) HandleUpdateCartItem(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleUpdateCartItem")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid product id",
			Code:  "INVALID_PRODUCT_ID",
		})
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if _, found := h.session.CartLine(id); !found {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrLineNotFound.Error(),
			Code:  "LINE_NOT_FOUND",
		})
		return
	}

	if !h.session.UpdateCartQuantity(id, *req.Quantity) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: ErrInsufficientStock.Error(),
			Code:  "INSUFFICIENT_STOCK",
		})
		return
	}

	logger.Info("Cart line updated", "product_id", id, "quantity", *req.Quantity)
	c.JSON(http.StatusOK, h.cartResponse())
}

// HandleRemoveCartItem handles DELETE /v1/store/cart/items/:id.
// Removing an absent line is a no-op.
func (h *Handlers) HandleRemoveCartItem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid product id",
			Code:  "INVALID_PRODUCT_ID",
		})
		return
	}

	h.session.RemoveFromCart(id)
	c.JSON(http.StatusOK, h.cartResponse())
}

// HandleClearCart handles DELETE /v1/store/cart.
func (h *Handlers) HandleClearCart(c *gin.Context) {
	h.session.ClearCart()
	c.JSON(http.StatusOK, h.cartResponse())
}

// HandleCheckout handles POST /v1/store/checkout.
//
// Description:
//
//	Runs the checkout pipeline: validates the cart against current
//	stock, persists the decremented catalog, and clears the cart. The
//	cart is left untouched on any failure.
//
// Response:
//
//	200 OK: CheckoutResponse
//	409 Conflict: Empty cart or insufficient stock
//	500 Internal Server Error: Persistence failure
func (h *Handlers) HandleCheckout(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleCheckout")

	receipt, err := h.session.Checkout(c.Request.Context())
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "CHECKOUT_FAILED"

		if errors.Is(err, ErrEmptyCart) {
			statusCode = http.StatusConflict
			errCode = "EMPTY_CART"
		} else if errors.Is(err, ErrInsufficientStock) {
			statusCode = http.StatusConflict
			errCode = "INSUFFICIENT_STOCK"
		} else if errors.Is(err, ErrSaveFailed) {
			errCode = "SAVE_FAILED"
		}

		logger.Warn("Checkout rejected", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Checkout committed",
		"receipt_id", receipt.ID,
		"total", receipt.Total,
		"item_count", receipt.ItemCount)
	c.JSON(http.StatusOK, CheckoutResponse{Receipt: receipt})
}

// HandleSignUp handles POST /v1/auth/signup.
//
// Response:
//
//	201 Created: IdentityResponse
//	400 Bad Request: Validation error
//	409 Conflict: Email already registered
func (h *Handlers) HandleSignUp(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSignUp")

	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.auth.SignUp(c.Request.Context(), req.Name, req.Email, req.Password); err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "SIGNUP_FAILED"
		if errors.Is(err, auth.ErrUserExists) {
			statusCode = http.StatusConflict
			errCode = "USER_EXISTS"
		}

		logger.Warn("Sign-up failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	user, _ := h.auth.CurrentUser()
	logger.Info("User signed up", "email", user.Email)
	c.JSON(http.StatusCreated, IdentityResponse{User: user})
}

// HandleSignIn handles POST /v1/auth/signin.
//
// Response:
//
//	200 OK: IdentityResponse
//	400 Bad Request: Validation error
//	401 Unauthorized: Invalid credentials
func (h *Handlers) HandleSignIn(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSignIn")

	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	if err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "SIGNIN_FAILED"
		if errors.Is(err, auth.ErrInvalidCredentials) {
			statusCode = http.StatusUnauthorized
			errCode = "INVALID_CREDENTIALS"
		}

		logger.Warn("Sign-in failed", "error", err)
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	user, _ := h.auth.CurrentUser()
	c.JSON(http.StatusOK, IdentityResponse{User: user})
}

// HandleSignOut handles POST /v1/auth/signout. Signing out also clears
// the cart; the catalog cache is kept.
func (h *Handlers) HandleSignOut(c *gin.Context) {
	h.auth.SignOut()
	h.session.Logout()
	c.Status(http.StatusNoContent)
}

// HandleMe handles GET /v1/auth/me.
func (h *Handlers) HandleMe(c *gin.Context) {
	user, ok := h.auth.CurrentUser()
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: "not signed in",
			Code:  "NOT_SIGNED_IN",
		})
		return
	}
	c.JSON(http.StatusOK, IdentityResponse{User: user})
}

// HandleHealth handles GET /v1/store/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "healthy",
		Version:     ServiceVersion,
		CatalogSize: len(h.session.Products()),
		CartItems:   h.session.CartCount(),
	})
}

func (h *Handlers) cartResponse() CartResponse {
	return CartResponse{
		Items:     h.session.CartItems(),
		Total:     h.session.CartTotal(),
		ItemCount: h.session.CartCount(),
	}
}

// getOrCreateRequestID returns the X-Request-ID header, minting one
// when the caller did not send it.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
