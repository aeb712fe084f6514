package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// OrderPageSize is the fixed number of orders requested per page
const OrderPageSize = 250

// OrderPage is one page of order history
type OrderPage struct {
	Orders     []entities.Order
	NextCursor string
	HasMore    bool
}

// OrderSource provides paginated order history, newest first
type OrderSource interface {
	// FetchOrders returns orders created at or after createdAfter. An empty
	// cursor requests the first page. Throttling is reported as *RateLimitedError.
	FetchOrders(ctx context.Context, createdAfter time.Time, cursor string) (OrderPage, error)
}

// RateLimitedError signals that the source asked the caller to back off
type RateLimitedError struct {
	// RetryAfter is zero when the source did not say how long to wait
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}
