// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

// SeedCatalog returns the built-in demo catalog used when both the
// local store and the remote feed come up empty. It keeps the
// storefront browsable on a cold start without connectivity.
func SeedCatalog() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "ASUS Gaming Laptop",
			Price:       2999.99,
			Description: "Gaming laptop with RTX 4060 graphics",
			Category:    "Electronics",
			Image:       "https://cdn.pixabay.com/photo/2014/09/27/13/44/notebook-463485_960_720.jpg",
			Stock:       10,
			Rating:      4.5,
			ReviewCount: 120,
		},
		{
			ID:          2,
			Name:        "Logitech Wireless Mouse",
			Price:       49.99,
			Description: "Ergonomic mouse with optical sensor",
			Category:    "Electronics",
			Image:       "https://cdn.pixabay.com/photo/2013/07/13/11/44/mouse-158823_960_720.png",
			Stock:       25,
			Rating:      4.2,
			ReviewCount: 85,
		},
		{
			ID:          3,
			Name:        "Redragon Mechanical Keyboard",
			Price:       89.99,
			Description: "Mechanical keyboard with blue switches",
			Category:    "Electronics",
			Image:       "https://cdn.pixabay.com/photo/2014/09/27/13/46/keyboard-463525_960_720.jpg",
			Stock:       15,
			Rating:      4.7,
			ReviewCount: 200,
		},
	}
}
