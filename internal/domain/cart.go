package domain

import (
	"github.com/google/uuid"
)

// CartLine is one product entry in a user's in-progress cart. UnitPrice is
// captured when the line is added and is the price the order will freeze,
// regardless of later catalog price changes.
type CartLine struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unit_price"`
}

// Subtotal returns quantity times the captured unit price.
func (l *CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Cart is the mutable per-user collection of cart lines.
type Cart struct {
	UserID uuid.UUID  `json:"user_id"`
	Lines  []CartLine `json:"lines"`
}

// Total returns the derived cart total.
func (c *Cart) Total() float64 {
	var total float64
	for i := range c.Lines {
		total += c.Lines[i].Subtotal()
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
