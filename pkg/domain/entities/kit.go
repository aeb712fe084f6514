package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// KitComponent represents a single bill-of-materials line of a kit
type KitComponent struct {
	KitSKU         SKU             `json:"kit_sku" validate:"required"`
	ComponentSKU   SKU             `json:"component_sku" validate:"required"`
	ComponentName  string          `json:"component_name"`
	QuantityPerKit decimal.Decimal `json:"quantity_per_kit" validate:"gt=0"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	// Critical is informational and does not change the bottleneck computation
	Critical bool `json:"critical"`
}

// NewKitComponent creates a KitComponent checked against its struct tags.
// A non-positive quantity per kit or a negative cost yields a *ValidationError.
func NewKitComponent(kitSKU, componentSKU SKU, componentName string, qtyPerKit, unitCost decimal.Decimal, critical bool) (*KitComponent, error) {
	kc := &KitComponent{
		KitSKU:         kitSKU,
		ComponentSKU:   componentSKU,
		ComponentName:  componentName,
		QuantityPerKit: qtyPerKit,
		UnitCost:       unitCost,
		Critical:       critical,
	}
	if err := Validate(kc); err != nil {
		return nil, err
	}
	return kc, nil
}

// DisplayName returns the component name, falling back to its SKU
func (c KitComponent) DisplayName() string {
	if c.ComponentName != "" {
		return c.ComponentName
	}
	return string(c.ComponentSKU)
}

// Kit represents an assembled product built from a fixed bill of materials
type Kit struct {
	SKU          SKU             `json:"sku" validate:"required"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price" validate:"gte=0"`
	Active       bool            `json:"active"`
	CreatedDate  time.Time       `json:"created_date"`
	LastModified time.Time       `json:"last_modified"`
	Components   []KitComponent  `json:"components" validate:"dive"`
}

// Clone returns a copy of the kit that shares no slice storage with the original
func (k Kit) Clone() Kit {
	clone := k
	if k.Components != nil {
		clone.Components = make([]KitComponent, len(k.Components))
		copy(clone.Components, k.Components)
	}
	return clone
}
