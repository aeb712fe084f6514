package entities

import "strings"

// Priority represents the restocking priority tier of a component
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

// String method for Priority enum
func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// MarshalText renders the priority by name
func (p Priority) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePriority parses a priority name case-insensitively.
// ok is false for anything other than High, Medium or Low.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	default:
		return PriorityMedium, false
	}
}

// Business rule defaults applied when a sheet cell is empty or malformed
const (
	DefaultMinimumBufferStock  Quantity = 0
	DefaultMaximumKitAssembly  Quantity = 1000
	DefaultLeadTimeDays                 = 7
	DefaultAssemblyTimeMinutes          = 15
)

// BusinessRule holds the buffer and assembly constraints configured for a component
type BusinessRule struct {
	ComponentSKU       SKU      `json:"component_sku" validate:"required"`
	MinimumBufferStock Quantity `json:"minimum_buffer_stock" validate:"gte=0"`
	// MaximumKitAssembly is a soft ceiling and is not enforced by the engine
	MaximumKitAssembly  Quantity `json:"maximum_kit_assembly" validate:"gte=0"`
	LeadTimeDays        int      `json:"lead_time_days" validate:"gte=0"`
	AssemblyTimeMinutes int      `json:"assembly_time_minutes" validate:"gte=0"`
	Priority            Priority `json:"priority"`
}

// DefaultBusinessRule returns the rule implied for a component with no configured row
func DefaultBusinessRule(sku SKU) BusinessRule {
	return BusinessRule{
		ComponentSKU:        sku,
		MinimumBufferStock:  DefaultMinimumBufferStock,
		MaximumKitAssembly:  DefaultMaximumKitAssembly,
		LeadTimeDays:        DefaultLeadTimeDays,
		AssemblyTimeMinutes: DefaultAssemblyTimeMinutes,
		Priority:            PriorityMedium,
	}
}
