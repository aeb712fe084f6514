package services

import (
	"fmt"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// ConsistencyValidator cross-checks the kit catalog and business rules against the
// storefront catalog. It only reads the snapshot.
type ConsistencyValidator struct{}

// NewConsistencyValidator creates a new consistency validator
func NewConsistencyValidator() *ConsistencyValidator {
	return &ConsistencyValidator{}
}

// MissingComponent is a kit line that references a SKU the storefront did not return
type MissingComponent struct {
	KitSKU       entities.SKU `json:"kit_sku"`
	ComponentSKU entities.SKU `json:"component_sku"`
}

// ConsistencyResult contains the results of consistency validation
type ConsistencyResult struct {
	MissingComponents []MissingComponent
	OrphanedRules     []entities.SKU
	Issues            []string
}

// Valid reports whether no issues were found
func (r *ConsistencyResult) Valid() bool {
	return len(r.Issues) == 0
}

// Validate reports kit lines with unknown components, in catalog and BOM order,
// followed by business rules for unknown components, sorted by SKU.
func (v *ConsistencyValidator) Validate(snapshot *entities.Snapshot) *ConsistencyResult {
	result := &ConsistencyResult{
		MissingComponents: make([]MissingComponent, 0),
		OrphanedRules:     make([]entities.SKU, 0),
		Issues:            make([]string, 0),
	}

	for _, kit := range snapshot.Kits() {
		for _, line := range kit.Components {
			if snapshot.HasComponent(line.ComponentSKU) {
				continue
			}
			result.MissingComponents = append(result.MissingComponents, MissingComponent{
				KitSKU:       kit.SKU,
				ComponentSKU: line.ComponentSKU,
			})
			result.Issues = append(result.Issues,
				fmt.Sprintf("Component %s in kit %s not found in Shopify", line.ComponentSKU, kit.SKU))
		}
	}

	for _, sku := range snapshot.RuleSKUs() {
		if snapshot.HasComponent(sku) {
			continue
		}
		result.OrphanedRules = append(result.OrphanedRules, sku)
		result.Issues = append(result.Issues,
			fmt.Sprintf("Business rule exists for non-existent component: %s", sku))
	}

	return result
}
