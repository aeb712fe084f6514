package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status classifies how many kits can still be assembled
type Status int

const (
	StatusOK Status = iota
	StatusLow
	StatusCritical
)

// LowStockThreshold is the largest buildable quantity still reported as LOW
const LowStockThreshold Quantity = 5

// String method for Status enum
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusLow:
		return "LOW"
	case StatusCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StatusFor classifies a buildable quantity
func StatusFor(maxBuildable Quantity) Status {
	switch {
	case maxBuildable <= 0:
		return StatusCritical
	case maxBuildable <= LowStockThreshold:
		return StatusLow
	default:
		return StatusOK
	}
}

// Bottleneck explanations used when no component-level minimum could be computed
const (
	BottleneckNoComponents = "No components defined"
	missingComponentPrefix = "Missing component: "
)

// MissingComponentBottleneck describes a kit that references an unknown component
func MissingComponentBottleneck(sku SKU) string {
	return fmt.Sprintf("%s%s", missingComponentPrefix, sku)
}

// EffectiveInventory is the buildable quantity computed for one kit
type EffectiveInventory struct {
	KitSKU       SKU      `json:"kit_sku"`
	KitName      string   `json:"kit_name"`
	MaxBuildable Quantity `json:"max_buildable"`
	// Bottleneck names the limiting component, or explains why nothing could be computed
	Bottleneck string `json:"bottleneck"`
	Status     Status `json:"status"`
}

// ForecastMetrics are the per-component restocking metrics derived from sales velocity
type ForecastMetrics struct {
	SKU               SKU             `json:"sku"`
	Name              string          `json:"name"`
	AvailableStock    Quantity        `json:"available_stock"`
	UnitsSold         Quantity        `json:"units_sold"`
	DailyVelocity     float64         `json:"daily_velocity"`
	DaysOfStock       *float64        `json:"days_of_stock"` // nil when there were no sales
	RecommendedBuffer Quantity        `json:"recommended_buffer"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	// ReorderRecommended is set when stock runs out before a restock could arrive
	ReorderRecommended bool `json:"reorder_recommended"`
}
