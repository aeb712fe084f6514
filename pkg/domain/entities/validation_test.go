package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidate_KitComponentQuantity(t *testing.T) {
	valid := KitComponent{KitSKU: "KIT-A", ComponentSKU: "SCL-01", QuantityPerKit: decimal.NewFromFloat(0.25)}
	if err := Validate(valid); err != nil {
		t.Fatalf("Expected fractional quantity to be valid: %v", err)
	}

	invalid := KitComponent{KitSKU: "KIT-A", ComponentSKU: "SCL-01", QuantityPerKit: decimal.Zero}
	err := Validate(invalid)
	if err == nil {
		t.Fatal("Expected zero quantity to fail validation")
	}

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected *ValidationError, got %T", err)
	}
	if len(validationErr.Fields) != 1 || validationErr.Fields[0].Tag != "gt" {
		t.Errorf("Expected a single gt failure, got %+v", validationErr.Fields)
	}
}

func TestValidate_BusinessRule(t *testing.T) {
	rule := DefaultBusinessRule("SCL-01")
	if err := Validate(rule); err != nil {
		t.Fatalf("Expected default rule to be valid: %v", err)
	}

	rule.MinimumBufferStock = -1
	if err := Validate(rule); err == nil {
		t.Error("Expected negative buffer to fail validation")
	}

	if err := Validate(BusinessRule{}); err == nil {
		t.Error("Expected rule without SKU to fail validation")
	}
}

func TestValidate_KitDivesIntoComponents(t *testing.T) {
	kit := Kit{
		SKU: "KIT-A",
		Components: []KitComponent{
			{KitSKU: "KIT-A", ComponentSKU: "SCL-01", QuantityPerKit: decimal.NewFromInt(1)},
			{KitSKU: "KIT-A", ComponentSKU: "SCL-02", QuantityPerKit: decimal.NewFromInt(-1)},
		},
	}

	if err := Validate(kit); err == nil {
		t.Error("Expected invalid component line to fail kit validation")
	}
}
