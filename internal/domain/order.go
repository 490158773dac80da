package domain

import "time"

// Order represents a purchase of one or more products by a user. ProductIDs
// may contain duplicates; each occurrence is billed at the product's price at
// creation time. Total is stored in integer cents and is never client-supplied.
type Order struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	ProductIDs []int64   `json:"product_ids"`
	Total      int64     `json:"total"`
	Payment    bool      `json:"payment"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderDetail is an order joined with its buyer and the current product rows
// for display. Total reflects prices at order time and is not recomputed on
// read.
type OrderDetail struct {
	Order
	User     *User     `json:"user,omitempty"`
	Products []Product `json:"products"`
}

// OrderTotal computes the stored total for the given subtotal in cents: a
// flat 20% markup applied once, rounded half-up to a whole cent.
func OrderTotal(subtotal int64) int64 {
	return (subtotal*12 + 5) / 10
}
