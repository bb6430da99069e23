package domain

import "time"

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	ImageURL      string    `json:"imageUrl"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stockQuantity"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProductPatch carries the fields an admin may change. Nil fields are left untouched.
type ProductPatch struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	PriceCents    *int64  `json:"priceCents,omitempty"`
	ImageURL      *string `json:"imageUrl,omitempty"`
	Category      *string `json:"category,omitempty"`
	StockQuantity *int    `json:"stockQuantity,omitempty"`
}
