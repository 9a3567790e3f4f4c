// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package remote implements the client for the hosted product feed.
//
// The feed is a static JSON document ("products.json") served over
// HTTPS. A fetch either succeeds with the complete catalog or fails;
// there is no pagination and no partial result. An empty or malformed
// body is treated as an empty catalog, not as a failure, so a broken
// deploy of the feed degrades to "no products" instead of taking the
// client's fallback path.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tiendalabs/storefront/services/storefront"
)

// DefaultTimeout bounds a single feed fetch.
const DefaultTimeout = 30 * time.Second

// feedValidate is the validator instance for feed records.
var feedValidate = validator.New()

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// productDTO is the wire shape of one feed record. It matches
// storefront.Product except that the feed carries no favorite flag;
// favorites are user state owned by the local store.
type productDTO struct {
	ID          int     `json:"id" validate:"required,gt=0"`
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gte=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image" validate:"omitempty,url"`
	Stock       int     `json:"stock" validate:"gte=0"`
	Rating      float32 `json:"rating" validate:"gte=0,lte=5"`
	ReviewCount int     `json:"reviewCount" validate:"gte=0"`
}

func (d productDTO) toDomain() storefront.Product {
	return storefront.Product{
		ID:          d.ID,
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
		Image:       d.Image,
		Stock:       d.Stock,
		Rating:      d.Rating,
		ReviewCount: d.ReviewCount,
	}
}

// feedResponse is the top-level feed document.
type feedResponse struct {
	Products []productDTO `json:"products"`
}

// Client fetches the product catalog from the hosted feed.
type Client struct {
	baseURL    string
	httpClient HTTPClient
}

// NewClient creates a feed client for the given base URL.
//
// Inputs:
//
//	baseURL - Feed origin, e.g. "https://json-tienda.vercel.app".
//	httpClient - Optional HTTP client; nil gets a default with a
//	30-second timeout.
func NewClient(baseURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// FetchAll retrieves the complete product catalog.
//
// Outputs:
//
//	[]storefront.Product - The fetched catalog. An empty or malformed
//	feed body yields an empty slice with a nil error.
//	error - Wraps storefront.ErrFeedUnavailable for transport errors
//	and non-success statuses.
func (c *Client) FetchAll(ctx context.Context) ([]storefront.Product, error) {
	url := c.baseURL + "/products.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", storefront.ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: feed returned status %s", storefront.ErrFeedUnavailable, resp.Status)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		// Malformed body is an empty catalog, not a failure.
		return []storefront.Product{}, nil
	}

	products := make([]storefront.Product, 0, len(feed.Products))
	for _, dto := range feed.Products {
		// Records failing validation are dropped rather than failing
		// the whole fetch.
		if err := feedValidate.Struct(dto); err != nil {
			continue
		}
		products = append(products, dto.toDomain())
	}
	return products, nil
}
