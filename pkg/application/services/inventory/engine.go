package inventory

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// Scope selects which kits an effective inventory computation covers
type Scope struct {
	// KitSKU names a single kit; empty means every active kit
	KitSKU entities.SKU
}

// AllActiveKits selects every active kit in catalog order
func AllActiveKits() Scope {
	return Scope{}
}

// SingleKit selects one kit regardless of its active flag
func SingleKit(sku entities.SKU) Scope {
	return Scope{KitSKU: sku}
}

// Engine computes buildable kit quantities and component forecasting metrics
// from an immutable catalog snapshot
type Engine struct {
	logger *zap.Logger
}

// NewEngine creates a new effective inventory engine
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger}
}

// ComputeEffectiveInventory computes the result for every kit in scope.
// A named kit that does not exist yields an empty result.
func (e *Engine) ComputeEffectiveInventory(snapshot *entities.Snapshot, scope Scope) []entities.EffectiveInventory {
	if scope.KitSKU != "" {
		kit, ok := snapshot.Kit(scope.KitSKU)
		if !ok {
			e.logger.Debug("kit not found", zap.String("kit_sku", string(scope.KitSKU)))
			return []entities.EffectiveInventory{}
		}
		return []entities.EffectiveInventory{e.ComputeKit(snapshot, kit)}
	}

	kits := snapshot.Kits()
	results := make([]entities.EffectiveInventory, 0, len(kits))
	for _, kit := range kits {
		if !kit.Active {
			continue
		}
		results = append(results, e.ComputeKit(snapshot, kit))
	}
	return results
}

// ComputeKit finds the component that limits how many kits can be assembled.
// A missing component invalidates the whole kit. On ties the earlier BOM line
// remains the bottleneck.
func (e *Engine) ComputeKit(snapshot *entities.Snapshot, kit entities.Kit) entities.EffectiveInventory {
	result := entities.EffectiveInventory{
		KitSKU:  kit.SKU,
		KitName: kit.Name,
	}

	if len(kit.Components) == 0 {
		result.Bottleneck = entities.BottleneckNoComponents
		result.Status = entities.StatusCritical
		return result
	}

	var minimum entities.Quantity
	found := false

	for _, line := range kit.Components {
		component, ok := snapshot.Component(line.ComponentSKU)
		if !ok {
			e.logger.Debug("kit references missing component",
				zap.String("kit_sku", string(kit.SKU)),
				zap.String("component_sku", string(line.ComponentSKU)))
			result.MaxBuildable = 0
			result.Bottleneck = entities.MissingComponentBottleneck(line.ComponentSKU)
			result.Status = entities.StatusCritical
			return result
		}

		supportable := e.supportableKits(snapshot, component, line)
		if !found || supportable < minimum {
			minimum = supportable
			result.Bottleneck = line.DisplayName()
			found = true
		}
	}

	result.MaxBuildable = minimum
	result.Status = entities.StatusFor(minimum)
	return result
}

// supportableKits returns floor(adjusted availability / quantity per kit)
func (e *Engine) supportableKits(snapshot *entities.Snapshot, component entities.Component, line entities.KitComponent) entities.Quantity {
	adjusted := AdjustedAvailability(snapshot, component)
	if !line.QuantityPerKit.IsPositive() {
		// Quantities are validated at load time; treat a stray one as unbuildable
		e.logger.Warn("non-positive quantity per kit",
			zap.String("kit_sku", string(line.KitSKU)),
			zap.String("component_sku", string(line.ComponentSKU)))
		return 0
	}

	quotient, _ := decimal.NewFromInt(int64(adjusted)).QuoRem(line.QuantityPerKit, 0)
	return entities.Quantity(quotient.IntPart())
}

// AdjustedAvailability subtracts the configured minimum buffer stock from the
// component's available stock, never going below zero
func AdjustedAvailability(snapshot *entities.Snapshot, component entities.Component) entities.Quantity {
	available := component.AvailableStock()
	if rule, ok := snapshot.Rule(component.SKU); ok {
		available -= rule.MinimumBufferStock
	}
	if available < 0 {
		return 0
	}
	return available
}

// StatusCounts summarizes a set of results by status
type StatusCounts struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Low      int `json:"low"`
	Critical int `json:"critical"`
}

// Summarize counts results by status
func Summarize(results []entities.EffectiveInventory) StatusCounts {
	counts := StatusCounts{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case entities.StatusOK:
			counts.OK++
		case entities.StatusLow:
			counts.Low++
		case entities.StatusCritical:
			counts.Critical++
		}
	}
	return counts
}
