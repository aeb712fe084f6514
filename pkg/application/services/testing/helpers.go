package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// WindowDays is the lookback window used by the test scenarios
const WindowDays = 30

// Line builds a kit BOM line with an integer quantity per kit
func Line(kitSKU, componentSKU entities.SKU, name string, qtyPerKit int64) entities.KitComponent {
	return entities.KitComponent{
		KitSKU:         kitSKU,
		ComponentSKU:   componentSKU,
		ComponentName:  name,
		QuantityPerKit: decimal.NewFromInt(qtyPerKit),
		Critical:       true,
	}
}

// FractionalLine builds a kit BOM line with a fractional quantity per kit
func FractionalLine(kitSKU, componentSKU entities.SKU, qtyPerKit string) entities.KitComponent {
	return entities.KitComponent{
		KitSKU:         kitSKU,
		ComponentSKU:   componentSKU,
		QuantityPerKit: decimal.RequireFromString(qtyPerKit),
		Critical:       true,
	}
}

// Stock builds a component with the given on-hand quantity
func Stock(sku entities.SKU, current entities.Quantity) entities.Component {
	return entities.Component{
		SKU:          sku,
		Name:         string(sku),
		CurrentStock: current,
		LastUpdated:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Buffer builds a business rule with the given minimum buffer stock
func Buffer(sku entities.SKU, buffer entities.Quantity) entities.BusinessRule {
	rule := entities.DefaultBusinessRule(sku)
	rule.MinimumBufferStock = buffer
	return rule
}

// BuildKitAScenario builds the reference scenario: KIT-A needs 2x SCL-01
// (stock 10, buffer 2) and 1x SCL-02 (stock 3), so SCL-02 limits it to 3 kits.
func BuildKitAScenario() *entities.Snapshot {
	return entities.NewSnapshot(entities.SnapshotData{
		StoreID:    "mexico",
		LoadedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		WindowDays: WindowDays,
		Components: []entities.Component{
			Stock("SCL-01", 10),
			Stock("SCL-02", 3),
		},
		Kits: []entities.Kit{
			{
				SKU:    "KIT-A",
				Name:   "Starter Kit",
				Active: true,
				Components: []entities.KitComponent{
					Line("KIT-A", "SCL-01", "", 2),
					Line("KIT-A", "SCL-02", "", 1),
				},
			},
		},
		Rules: map[entities.SKU]entities.BusinessRule{
			"SCL-01": Buffer("SCL-01", 2),
		},
	})
}

// BuildStoreScenario builds a small catalog that exercises every status tier,
// an inactive kit, a kit with no components and a kit with a missing component.
func BuildStoreScenario() *entities.Snapshot {
	components := []entities.Component{
		Stock("BASE", 100),
		Stock("LID", 40),
		Stock("STRAP", 4),
		Stock("SPOON", 0),
	}
	components[0].UnitCost = decimal.RequireFromString("3.25")
	components[0].UnitsSold = 150
	components[1].UnitsSold = 0
	components[2].UnitsSold = 30

	return entities.NewSnapshot(entities.SnapshotData{
		StoreID:    "usa",
		LoadedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		WindowDays: WindowDays,
		Components: components,
		Kits: []entities.Kit{
			{SKU: "KIT-OK", Name: "Plenty", Active: true, Components: []entities.KitComponent{
				Line("KIT-OK", "BASE", "Base", 1),
				Line("KIT-OK", "LID", "Lid", 2),
			}},
			{SKU: "KIT-LOW", Name: "Few", Active: true, Components: []entities.KitComponent{
				Line("KIT-LOW", "BASE", "Base", 1),
				Line("KIT-LOW", "STRAP", "Strap", 1),
			}},
			{SKU: "KIT-OUT", Name: "None", Active: true, Components: []entities.KitComponent{
				Line("KIT-OUT", "SPOON", "Spoon", 1),
			}},
			{SKU: "KIT-EMPTY", Name: "Empty", Active: true},
			{SKU: "KIT-GHOST", Name: "Ghost", Active: true, Components: []entities.KitComponent{
				Line("KIT-GHOST", "BASE", "Base", 1),
				Line("KIT-GHOST", "UNKNOWN", "Unknown", 1),
			}},
			{SKU: "KIT-RETIRED", Name: "Retired", Active: false, Components: []entities.KitComponent{
				Line("KIT-RETIRED", "BASE", "Base", 1),
			}},
		},
		Rules: map[entities.SKU]entities.BusinessRule{
			"BASE":   Buffer("BASE", 10),
			"ORPHAN": Buffer("ORPHAN", 1),
		},
	})
}
