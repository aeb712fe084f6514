package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

// OrderSource serves order history from memory, newest first, using the
// offset of the next order as the page cursor
type OrderSource struct {
	mu       sync.Mutex
	orders   []entities.Order
	pageSize int
	calls    int
}

// NewOrderSource creates an in-memory order source
func NewOrderSource(orders ...entities.Order) *OrderSource {
	s := &OrderSource{pageSize: repositories.OrderPageSize}
	s.AddOrders(orders...)
	return s
}

// Verify interface compliance
var _ repositories.OrderSource = (*OrderSource)(nil)

// AddOrders adds orders, keeping history sorted newest first
func (s *OrderSource) AddOrders(orders ...entities.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, orders...)
	sort.SliceStable(s.orders, func(i, j int) bool {
		return s.orders[i].CreatedAt.After(s.orders[j].CreatedAt)
	})
}

// SetPageSize changes the page size; values below one are ignored
func (s *OrderSource) SetPageSize(n int) {
	if n < 1 {
		return
	}
	s.mu.Lock()
	s.pageSize = n
	s.mu.Unlock()
}

// Calls returns how many pages have been requested
func (s *OrderSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// FetchOrders returns the page of orders created at or after createdAfter
// starting at the cursor offset
func (s *OrderSource) FetchOrders(ctx context.Context, createdAfter time.Time, cursor string) (repositories.OrderPage, error) {
	if err := ctx.Err(); err != nil {
		return repositories.OrderPage{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return repositories.OrderPage{}, fmt.Errorf("invalid order cursor %q", cursor)
		}
		offset = n
	}

	var inWindow []entities.Order
	for _, o := range s.orders {
		if !o.Before(createdAfter) {
			inWindow = append(inWindow, o)
		}
	}
	if offset >= len(inWindow) {
		return repositories.OrderPage{}, nil
	}

	end := offset + s.pageSize
	if end > len(inWindow) {
		end = len(inWindow)
	}
	page := repositories.OrderPage{
		Orders:  append([]entities.Order(nil), inWindow[offset:end]...),
		HasMore: end < len(inWindow),
	}
	if page.HasMore {
		page.NextCursor = strconv.Itoa(end)
	}
	return page, nil
}
