package entities

import (
	"fmt"
	"strings"
	"time"
)

// LineItem is a single SKU line of a storefront order
type LineItem struct {
	SKU      SKU      `json:"sku"`
	Quantity Quantity `json:"quantity"`
}

// Countable reports whether the line contributes to sales velocity
func (l LineItem) Countable() bool {
	return strings.TrimSpace(string(l.SKU)) != "" && l.Quantity > 0
}

// Order is a storefront order as seen by the sales velocity aggregation
type Order struct {
	ID        string     `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	LineItems []LineItem `json:"line_items"`
}

// NewOrder creates a validated Order
func NewOrder(id string, createdAt time.Time, lineItems []LineItem) (*Order, error) {
	if id == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	for i, item := range lineItems {
		if item.Quantity < 0 {
			return nil, fmt.Errorf("line item %d quantity cannot be negative, got %d", i, item.Quantity)
		}
	}

	return &Order{
		ID:        id,
		CreatedAt: createdAt,
		LineItems: lineItems,
	}, nil
}

// Before reports whether the order was created before t.
// Orders without a timestamp are never considered out of range.
func (o Order) Before(t time.Time) bool {
	return !o.CreatedAt.IsZero() && o.CreatedAt.Before(t)
}
