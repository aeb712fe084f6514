package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

func TestBOMSource_GroupsLinesByKit(t *testing.T) {
	ctx := context.Background()
	source := NewBOMSource()

	source.AddKit(entities.Kit{
		SKU:    "KIT-A",
		Active: true,
		Components: []entities.KitComponent{
			{KitSKU: "KIT-A", ComponentSKU: "SCL-01", QuantityPerKit: decimal.NewFromInt(2)},
		},
	})
	source.AddBOMLine(entities.KitComponent{KitSKU: "KIT-A", ComponentSKU: "SCL-02", QuantityPerKit: decimal.NewFromInt(1)})
	source.AddBOMLine(entities.KitComponent{KitSKU: "KIT-B", ComponentSKU: "SCL-01", QuantityPerKit: decimal.NewFromInt(3)})

	kits, err := source.FetchKits(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch kits: %v", err)
	}
	if len(kits) != 1 || kits[0].SKU != "KIT-A" {
		t.Fatalf("Expected only KIT-A, got %+v", kits)
	}
	if kits[0].Components != nil {
		t.Errorf("Expected kit headers without BOM lines")
	}

	lines, err := source.FetchKitComponents(ctx)
	if err != nil {
		t.Fatalf("Failed to fetch kit components: %v", err)
	}
	if len(lines["KIT-A"]) != 2 {
		t.Fatalf("Expected 2 lines for KIT-A, got %d", len(lines["KIT-A"]))
	}
	if lines["KIT-A"][0].ComponentSKU != "SCL-01" || lines["KIT-A"][1].ComponentSKU != "SCL-02" {
		t.Errorf("Expected BOM order to be preserved, got %+v", lines["KIT-A"])
	}
	if len(lines["KIT-B"]) != 1 {
		t.Errorf("Expected 1 line for KIT-B, got %d", len(lines["KIT-B"]))
	}
}

func TestBOMSource_RulesAreCopies(t *testing.T) {
	ctx := context.Background()
	source := NewBOMSource()
	source.AddBusinessRule(entities.DefaultBusinessRule("SCL-01"))

	rules, _ := source.FetchBusinessRules(ctx)
	delete(rules, "SCL-01")

	again, _ := source.FetchBusinessRules(ctx)
	if _, ok := again["SCL-01"]; !ok {
		t.Errorf("Mutating a fetched map must not affect the source")
	}
}

func TestComponentSource_DropsBlankSKU(t *testing.T) {
	source := NewComponentSource(
		entities.Component{SKU: "SCL-01", CurrentStock: 10},
		entities.Component{SKU: "", CurrentStock: 99},
	)

	components, err := source.FetchActiveComponents(context.Background())
	if err != nil {
		t.Fatalf("Failed to fetch components: %v", err)
	}
	if len(components) != 1 {
		t.Errorf("Expected 1 component, got %d", len(components))
	}
}

func TestOrderSource_PagesNewestFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	var orders []entities.Order
	for i := 0; i < 5; i++ {
		orders = append(orders, entities.Order{
			ID:        fmt.Sprintf("%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	source := NewOrderSource(orders...)
	source.SetPageSize(2)

	var ids []string
	cursor := ""
	for {
		page, err := source.FetchOrders(ctx, base.Add(time.Hour), cursor)
		if err != nil {
			t.Fatalf("Failed to fetch orders: %v", err)
		}
		for _, o := range page.Orders {
			ids = append(ids, o.ID)
		}
		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	expected := []string{"4", "3", "2", "1"}
	if fmt.Sprint(ids) != fmt.Sprint(expected) {
		t.Errorf("Expected %v, got %v", expected, ids)
	}
	if source.Calls() != 2 {
		t.Errorf("Expected 2 page requests, got %d", source.Calls())
	}

	if _, err := source.FetchOrders(ctx, base, "bogus"); err == nil {
		t.Errorf("Expected an error for a malformed cursor")
	}
}

func TestVelocityCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache := NewVelocityCache()
	cache.SetClock(func() time.Time { return now })

	if err := cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-01": 7}); err != nil {
		t.Fatalf("Failed to put: %v", err)
	}

	units, ok, err := cache.Get(ctx, "mexico", time.Hour)
	if err != nil || !ok {
		t.Fatalf("Expected a fresh entry, got ok=%v err=%v", ok, err)
	}
	if units["SCL-01"] != 7 {
		t.Errorf("Expected 7 units, got %d", units["SCL-01"])
	}

	if _, ok, _ := cache.Get(ctx, "usa", time.Hour); ok {
		t.Errorf("Expected a miss for another store")
	}

	now = now.Add(time.Hour)
	if _, ok, _ := cache.Get(ctx, "mexico", time.Hour); ok {
		t.Errorf("Expected the entry to be stale at exactly the TTL")
	}

	_ = cache.Clear(ctx, "mexico")
	if err := cache.Clear(ctx, "mexico"); err != nil {
		t.Errorf("Clearing a missing entry should not fail: %v", err)
	}
}
