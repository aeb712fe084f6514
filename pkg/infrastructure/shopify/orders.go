package shopify

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

type ordersResponse struct {
	Orders []order `json:"orders"`
}

type order struct {
	ID        int64      `json:"id"`
	CreatedAt string     `json:"created_at"`
	LineItems []lineItem `json:"line_items"`
}

type lineItem struct {
	SKU      *string `json:"sku"`
	Quantity int64   `json:"quantity"`
}

// FetchOrders returns one page of orders created at or after createdAfter,
// newest first. The cursor is the created_at of the last order of the
// previous page and bounds the next page from above. Throttling is returned
// as *repositories.RateLimitedError so the caller owns the backoff.
func (c *Client) FetchOrders(ctx context.Context, createdAfter time.Time, cursor string) (repositories.OrderPage, error) {
	params := url.Values{}
	params.Set("status", "any")
	params.Set("created_at_min", createdAfter.UTC().Format(time.RFC3339))
	params.Set("limit", strconv.Itoa(repositories.OrderPageSize))
	params.Set("fields", "line_items,created_at,id")
	if cursor != "" {
		params.Set("created_at_max", cursor)
	}

	var body ordersResponse
	if _, err := c.get(ctx, "orders.json", params, &body); err != nil {
		return repositories.OrderPage{}, err
	}

	page := repositories.OrderPage{Orders: make([]entities.Order, 0, len(body.Orders))}
	for _, o := range body.Orders {
		created, err := time.Parse(time.RFC3339, o.CreatedAt)
		if err != nil {
			c.logger.Warn("order has unparsable created_at", zap.Int64("order_id", o.ID), zap.String("created_at", o.CreatedAt))
		}

		items := make([]entities.LineItem, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			sku := ""
			if li.SKU != nil {
				sku = strings.TrimSpace(*li.SKU)
			}
			items = append(items, entities.LineItem{SKU: entities.SKU(sku), Quantity: entities.Quantity(li.Quantity)})
		}

		page.Orders = append(page.Orders, entities.Order{
			ID:        strconv.FormatInt(o.ID, 10),
			CreatedAt: created.UTC(),
			LineItems: items,
		})
	}

	if n := len(body.Orders); n == repositories.OrderPageSize {
		page.HasMore = true
		page.NextCursor = body.Orders[n-1].CreatedAt
	}
	return page, nil
}
