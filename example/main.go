package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/application/services/inventory"
	"github.com/vsinha/kitinv/pkg/application/services/reconcile"
	"github.com/vsinha/kitinv/pkg/application/services/velocity"
	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/kitinv/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	logger, _ := zap.NewDevelopment()
	defer logger.Sync() //nolint:errcheck

	// Storefront stock and a month of orders
	now := time.Now().UTC()
	components := memory.NewComponentSource(
		entities.Component{SKU: "SCL-01", Name: "Digital Scale", CurrentStock: 10, UnitCost: decimal.RequireFromString("12.50")},
		entities.Component{SKU: "SCL-02", Name: "Scoop", CurrentStock: 3, UnitCost: decimal.RequireFromString("0.75")},
		entities.Component{SKU: "JAR-01", Name: "Glass Jar", CurrentStock: 48, ReservedStock: 6, UnitCost: decimal.RequireFromString("1.10")},
	)
	orders := memory.NewOrderSource(
		entities.Order{ID: "1001", CreatedAt: now.AddDate(0, 0, -2), LineItems: []entities.LineItem{{SKU: "SCL-01", Quantity: 2}, {SKU: "JAR-01", Quantity: 6}}},
		entities.Order{ID: "1002", CreatedAt: now.AddDate(0, 0, -9), LineItems: []entities.LineItem{{SKU: "SCL-02", Quantity: 1}}},
		entities.Order{ID: "1003", CreatedAt: now.AddDate(0, 0, -21), LineItems: []entities.LineItem{{SKU: "JAR-01", Quantity: 24}}},
	)

	// Curated kit catalog
	bom := memory.NewBOMSource()
	bom.AddKit(entities.Kit{SKU: "KIT-A", Name: "Starter Kit", Active: true, Components: []entities.KitComponent{
		{KitSKU: "KIT-A", ComponentSKU: "SCL-01", ComponentName: "Digital Scale", QuantityPerKit: decimal.NewFromInt(2), Critical: true},
		{KitSKU: "KIT-A", ComponentSKU: "SCL-02", ComponentName: "Scoop", QuantityPerKit: decimal.NewFromInt(1)},
	}})
	bom.AddKit(entities.Kit{SKU: "KIT-J", Name: "Pantry Set", Active: true, Components: []entities.KitComponent{
		{KitSKU: "KIT-J", ComponentSKU: "JAR-01", ComponentName: "Glass Jar", QuantityPerKit: decimal.NewFromInt(4), Critical: true},
	}})
	rule := entities.DefaultBusinessRule("SCL-01")
	rule.MinimumBufferStock = 2
	bom.AddBusinessRule(rule)

	aggregator := velocity.NewAggregator(orders, memory.NewVelocityCache(), logger)
	svc := reconcile.NewService("mexico", 30, reconcile.Sources{
		Components: components,
		BOM:        bom,
		Costs:      bom,
	}, aggregator, logger)

	fmt.Println("🚀 Reconciling kit inventory...")
	if _, err := svc.Load(ctx); err != nil {
		fmt.Printf("❌ Load failed: %v\n", err)
		return
	}

	report, err := svc.Report(inventory.AllActiveKits())
	if err != nil {
		fmt.Printf("❌ Report failed: %v\n", err)
		return
	}

	gains, err := svc.SimulateDisassembly("KIT-A", 2)
	if err != nil {
		fmt.Printf("❌ Disassembly failed: %v\n", err)
		return
	}
	report.Disassembly = gains

	if err := output.Generate(os.Stdout, report, output.Config{Format: output.FormatText}); err != nil {
		fmt.Printf("❌ Output failed: %v\n", err)
	}
}
