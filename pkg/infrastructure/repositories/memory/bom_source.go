package memory

import (
	"context"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

// BOMSource provides in-memory kits, BOM lines, business rules and costs
type BOMSource struct {
	kits       []entities.Kit
	bomLines   []entities.KitComponent
	bomIndexes map[entities.SKU][]int
	rules      map[entities.SKU]entities.BusinessRule
	costs      map[entities.SKU]entities.ProductCost
}

// NewBOMSource creates an empty in-memory BOM source
func NewBOMSource() *BOMSource {
	return &BOMSource{
		bomIndexes: make(map[entities.SKU][]int),
		rules:      make(map[entities.SKU]entities.BusinessRule),
		costs:      make(map[entities.SKU]entities.ProductCost),
	}
}

// Verify interface compliance
var _ repositories.BOMSource = (*BOMSource)(nil)
var _ repositories.ProductCostSource = (*BOMSource)(nil)
var _ repositories.Pinger = (*BOMSource)(nil)

// AddKit adds a kit header. Any BOM lines carried on the kit are added too.
func (s *BOMSource) AddKit(kit entities.Kit) {
	lines := kit.Components
	kit.Components = nil
	s.kits = append(s.kits, kit)
	for _, line := range lines {
		s.AddBOMLine(line)
	}
}

// AddBOMLine adds a BOM line to the kit it names
func (s *BOMSource) AddBOMLine(line entities.KitComponent) {
	index := len(s.bomLines)
	s.bomLines = append(s.bomLines, line)
	s.bomIndexes[line.KitSKU] = append(s.bomIndexes[line.KitSKU], index)
}

// AddBusinessRule adds or replaces the rule for a component
func (s *BOMSource) AddBusinessRule(rule entities.BusinessRule) {
	s.rules[rule.ComponentSKU] = rule
}

// AddProductCost adds or replaces a manual cost entry
func (s *BOMSource) AddProductCost(cost entities.ProductCost) {
	s.costs[cost.SKU] = cost
}

// FetchKits returns kit headers in insertion order, without BOM lines
func (s *BOMSource) FetchKits(ctx context.Context) ([]entities.Kit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]entities.Kit, len(s.kits))
	copy(out, s.kits)
	return out, nil
}

// FetchKitComponents returns BOM lines grouped by kit in insertion order
func (s *BOMSource) FetchKitComponents(ctx context.Context) (map[entities.SKU][]entities.KitComponent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[entities.SKU][]entities.KitComponent, len(s.bomIndexes))
	for kitSKU, indexes := range s.bomIndexes {
		lines := make([]entities.KitComponent, 0, len(indexes))
		for _, i := range indexes {
			lines = append(lines, s.bomLines[i])
		}
		out[kitSKU] = lines
	}
	return out, nil
}

// FetchBusinessRules returns a copy of the stored rules
func (s *BOMSource) FetchBusinessRules(ctx context.Context) (map[entities.SKU]entities.BusinessRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[entities.SKU]entities.BusinessRule, len(s.rules))
	for sku, r := range s.rules {
		out[sku] = r
	}
	return out, nil
}

// FetchProductCosts returns a copy of the stored cost entries
func (s *BOMSource) FetchProductCosts(ctx context.Context) (map[entities.SKU]entities.ProductCost, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[entities.SKU]entities.ProductCost, len(s.costs))
	for sku, c := range s.costs {
		out[sku] = c
	}
	return out, nil
}

// Ping always succeeds
func (s *BOMSource) Ping(ctx context.Context) error {
	return ctx.Err()
}
