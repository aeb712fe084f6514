package entities

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Snapshot is the immutable catalog state of one load cycle.
// Accessors hand out copies so callers can never mutate engine state.
type Snapshot struct {
	ID         uuid.UUID
	StoreID    string
	LoadedAt   time.Time
	WindowDays int

	components map[SKU]Component
	kits       []Kit
	kitIndex   map[SKU]int
	rules      map[SKU]BusinessRule
	costs      map[SKU]ProductCost
}

// SnapshotData is the raw material a Snapshot is assembled from
type SnapshotData struct {
	StoreID    string
	LoadedAt   time.Time
	WindowDays int
	Components []Component
	Kits       []Kit
	Rules      map[SKU]BusinessRule
	Costs      map[SKU]ProductCost
}

// NewSnapshot assembles a snapshot. Later components replace earlier ones with the
// same SKU; a repeated kit SKU replaces the earlier kit but keeps its position.
func NewSnapshot(data SnapshotData) *Snapshot {
	s := &Snapshot{
		ID:         uuid.New(),
		StoreID:    data.StoreID,
		LoadedAt:   data.LoadedAt,
		WindowDays: data.WindowDays,
		components: make(map[SKU]Component, len(data.Components)),
		kits:       make([]Kit, 0, len(data.Kits)),
		kitIndex:   make(map[SKU]int, len(data.Kits)),
		rules:      make(map[SKU]BusinessRule, len(data.Rules)),
		costs:      make(map[SKU]ProductCost, len(data.Costs)),
	}

	for _, c := range data.Components {
		s.components[c.SKU] = c
	}
	for _, k := range data.Kits {
		if i, exists := s.kitIndex[k.SKU]; exists {
			s.kits[i] = k.Clone()
			continue
		}
		s.kitIndex[k.SKU] = len(s.kits)
		s.kits = append(s.kits, k.Clone())
	}
	for sku, r := range data.Rules {
		s.rules[sku] = r
	}
	for sku, c := range data.Costs {
		s.costs[sku] = c
	}

	return s
}

// Component returns the component snapshot for a SKU
func (s *Snapshot) Component(sku SKU) (Component, bool) {
	c, ok := s.components[sku]
	return c, ok
}

// HasComponent reports whether the storefront returned the SKU
func (s *Snapshot) HasComponent(sku SKU) bool {
	_, ok := s.components[sku]
	return ok
}

// Components returns all components ordered by SKU
func (s *Snapshot) Components() []Component {
	components := make([]Component, 0, len(s.components))
	for _, c := range s.components {
		components = append(components, c)
	}
	sort.Slice(components, func(i, j int) bool {
		return components[i].SKU < components[j].SKU
	})
	return components
}

// Kit returns the kit for a SKU
func (s *Snapshot) Kit(sku SKU) (Kit, bool) {
	i, ok := s.kitIndex[sku]
	if !ok {
		return Kit{}, false
	}
	return s.kits[i].Clone(), true
}

// Kits returns all kits in catalog order
func (s *Snapshot) Kits() []Kit {
	kits := make([]Kit, len(s.kits))
	for i, k := range s.kits {
		kits[i] = k.Clone()
	}
	return kits
}

// Rule returns the business rule configured for a component
func (s *Snapshot) Rule(sku SKU) (BusinessRule, bool) {
	r, ok := s.rules[sku]
	return r, ok
}

// RuleSKUs returns the SKUs that carry a business rule, sorted
func (s *Snapshot) RuleSKUs() []SKU {
	skus := make([]SKU, 0, len(s.rules))
	for sku := range s.rules {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}

// Cost returns the manually maintained cost for a SKU
func (s *Snapshot) Cost(sku SKU) (ProductCost, bool) {
	c, ok := s.costs[sku]
	return c, ok
}

// Costs returns a copy of every manually maintained cost
func (s *Snapshot) Costs() map[SKU]ProductCost {
	costs := make(map[SKU]ProductCost, len(s.costs))
	for sku, c := range s.costs {
		costs[sku] = c
	}
	return costs
}

// ComponentCount returns the number of components loaded
func (s *Snapshot) ComponentCount() int { return len(s.components) }

// KitCount returns the number of kits loaded
func (s *Snapshot) KitCount() int { return len(s.kits) }

// RuleCount returns the number of business rules loaded
func (s *Snapshot) RuleCount() int { return len(s.rules) }
