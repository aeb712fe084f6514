package repositories

import (
	"context"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// BOMSource provides the curated kit bill-of-materials and business rules
type BOMSource interface {
	FetchKits(ctx context.Context) ([]entities.Kit, error)
	// FetchKitComponents returns BOM lines grouped by kit SKU, in sheet order
	FetchKitComponents(ctx context.Context) (map[entities.SKU][]entities.KitComponent, error)
	FetchBusinessRules(ctx context.Context) (map[entities.SKU]entities.BusinessRule, error)
}

// ProductCostSource provides manually maintained unit costs
type ProductCostSource interface {
	FetchProductCosts(ctx context.Context) (map[entities.SKU]entities.ProductCost, error)
}
