package entities

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// SKU is the storefront stock-keeping unit that identifies a component or kit
type SKU string

// Quantity represents an integer count of physical units
type Quantity int64

// RecommendedBufferDays is the number of days of sales the recommended buffer covers
const RecommendedBufferDays = 7

// Component represents a stocked item as reported by the storefront at load time
type Component struct {
	SKU           SKU             `json:"sku" validate:"required"`
	Name          string          `json:"name"`
	CurrentStock  Quantity        `json:"current_stock"`
	ReservedStock Quantity        `json:"reserved_stock" validate:"gte=0"`
	UnitsSold     Quantity        `json:"units_sold" validate:"gte=0"`
	UnitCost      decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	LastUpdated   time.Time       `json:"last_updated"`
}

// AvailableStock returns physical stock less reservations, never below zero
func (c Component) AvailableStock() Quantity {
	available := c.CurrentStock - c.ReservedStock
	if available < 0 {
		return 0
	}
	return available
}

// DailyVelocity returns the average units sold per day over the window
func (c Component) DailyVelocity(windowDays int) float64 {
	if windowDays <= 0 || c.UnitsSold <= 0 {
		return 0
	}
	return float64(c.UnitsSold) / float64(windowDays)
}

// DaysOfStock returns how long available stock lasts at the current velocity.
// ok is false when there is no sales signal.
func (c Component) DaysOfStock(windowDays int) (days float64, ok bool) {
	velocity := c.DailyVelocity(windowDays)
	if velocity <= 0 {
		return 0, false
	}
	return float64(c.AvailableStock()) / velocity, true
}

// RecommendedBuffer returns a week of sales, rounded half to even
func (c Component) RecommendedBuffer(windowDays int) Quantity {
	velocity := c.DailyVelocity(windowDays)
	if velocity <= 0 {
		return 0
	}
	return Quantity(math.RoundToEven(velocity * RecommendedBufferDays))
}

// InventoryValue returns available stock valued at unit cost
func (c Component) InventoryValue() decimal.Decimal {
	return decimal.NewFromInt(int64(c.AvailableStock())).Mul(c.UnitCost)
}

// ProductCost is a manually maintained cost entry for a component or kit
type ProductCost struct {
	SKU            SKU             `json:"sku" validate:"required"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	ManualOverride bool            `json:"manual_override"`
}
