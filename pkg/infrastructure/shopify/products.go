package shopify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

const defaultVariantTitle = "Default Title"

type productsResponse struct {
	Products []product `json:"products"`
}

type product struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Status   string    `json:"status"`
	Variants []variant `json:"variants"`
}

type variant struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	SKU               *string `json:"sku"`
	InventoryQuantity int64   `json:"inventory_quantity"`
}

// FetchActiveComponents returns one component per active product variant
// that carries a SKU, following pagination links until exhausted
func (c *Client) FetchActiveComponents(ctx context.Context) ([]entities.Component, error) {
	params := url.Values{}
	params.Set("status", "active")
	params.Set("limit", strconv.Itoa(250))
	params.Set("fields", "id,title,variants,status")

	var (
		components []entities.Component
		withoutSKU int
		skipped    int
		pages      int
	)
	now := time.Now()

	for {
		var body productsResponse
		header, err := c.getWithRetry(ctx, "products.json", params, &body)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products: %w", err)
		}
		pages++

		for _, p := range body.Products {
			if p.Status != "active" {
				skipped++
				continue
			}
			for _, v := range p.Variants {
				sku := ""
				if v.SKU != nil {
					sku = strings.TrimSpace(*v.SKU)
				}
				if sku == "" {
					withoutSKU++
					c.logger.Debug("variant has no sku",
						zap.Int64("product_id", p.ID),
						zap.Int64("variant_id", v.ID))
					continue
				}
				components = append(components, entities.Component{
					SKU:          entities.SKU(sku),
					Name:         variantName(p.Title, v.Title),
					CurrentStock: entities.Quantity(v.InventoryQuantity),
					LastUpdated:  now,
				})
			}
		}

		pageInfo := nextPageInfo(header.Get("Link"))
		if pageInfo == "" {
			break
		}
		// page_info requests may not repeat the original filters
		params = url.Values{}
		params.Set("limit", strconv.Itoa(250))
		params.Set("fields", "id,title,variants,status")
		params.Set("page_info", pageInfo)
	}

	c.logger.Info("fetched shopify products",
		zap.Int("pages", pages),
		zap.Int("components", len(components)),
		zap.Int("variants_without_sku", withoutSKU),
		zap.Int("inactive_products", skipped))
	return components, nil
}

func variantName(productTitle, variantTitle string) string {
	variantTitle = strings.TrimSpace(variantTitle)
	if variantTitle == "" || variantTitle == defaultVariantTitle {
		return productTitle
	}
	return productTitle + " - " + variantTitle
}
