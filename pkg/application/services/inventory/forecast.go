package inventory

import (
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// ForecastMetrics derives restocking metrics for every component in the snapshot.
// The recommended buffer is reported only; it never feeds the bottleneck math,
// which uses the configured minimum buffer stock.
func (e *Engine) ForecastMetrics(snapshot *entities.Snapshot) map[entities.SKU]entities.ForecastMetrics {
	components := snapshot.Components()
	metrics := make(map[entities.SKU]entities.ForecastMetrics, len(components))

	for _, c := range components {
		metrics[c.SKU] = e.componentMetrics(snapshot, c)
	}
	return metrics
}

// ForecastList returns the same metrics as ForecastMetrics, ordered by SKU
func (e *Engine) ForecastList(snapshot *entities.Snapshot) []entities.ForecastMetrics {
	components := snapshot.Components()
	list := make([]entities.ForecastMetrics, 0, len(components))
	for _, c := range components {
		list = append(list, e.componentMetrics(snapshot, c))
	}
	return list
}

func (e *Engine) componentMetrics(snapshot *entities.Snapshot, c entities.Component) entities.ForecastMetrics {
	window := snapshot.WindowDays
	m := entities.ForecastMetrics{
		SKU:               c.SKU,
		Name:              c.Name,
		AvailableStock:    c.AvailableStock(),
		UnitsSold:         c.UnitsSold,
		DailyVelocity:     c.DailyVelocity(window),
		RecommendedBuffer: c.RecommendedBuffer(window),
		InventoryValue:    c.InventoryValue(),
	}

	if days, ok := c.DaysOfStock(window); ok {
		m.DaysOfStock = &days
		m.ReorderRecommended = days < float64(leadTimeDays(snapshot, c.SKU))
	}
	return m
}

func leadTimeDays(snapshot *entities.Snapshot, sku entities.SKU) int {
	if rule, ok := snapshot.Rule(sku); ok {
		return rule.LeadTimeDays
	}
	return entities.DefaultLeadTimeDays
}
