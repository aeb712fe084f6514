package inventory

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// KitCosts combines manually maintained costs with costs rolled up from each
// kit's components. A kit flagged as manual override keeps its manual cost, and
// a roll-up of zero never replaces a manual value.
func (e *Engine) KitCosts(snapshot *entities.Snapshot) map[entities.SKU]decimal.Decimal {
	manual := snapshot.Costs()
	costs := make(map[entities.SKU]decimal.Decimal, len(manual))
	for sku, c := range manual {
		costs[sku] = c.UnitCost
	}

	for _, kit := range snapshot.Kits() {
		if c, ok := manual[kit.SKU]; ok && c.ManualOverride {
			continue
		}
		if len(kit.Components) == 0 {
			continue
		}

		total := decimal.Zero
		for _, line := range kit.Components {
			total = total.Add(componentCost(manual, line).Mul(line.QuantityPerKit))
		}

		if total.IsPositive() {
			costs[kit.SKU] = total
		} else {
			e.logger.Debug("kit components carry no cost", zap.String("kit_sku", string(kit.SKU)))
		}
	}
	return costs
}

// componentCost prefers the manual cost sheet over the cost typed on the BOM line
func componentCost(manual map[entities.SKU]entities.ProductCost, line entities.KitComponent) decimal.Decimal {
	if c, ok := manual[line.ComponentSKU]; ok {
		return c.UnitCost
	}
	return line.UnitCost
}
