package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		AccessToken:       "shpat_test",
		BaseURL:           srv.URL + "/admin/api/2024-01",
		RequestsPerSecond: 1000,
		Burst:             100,
	}, zap.NewNop())
	require.NoError(t, err)
	client.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{ShopDomain: "acme"}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)

	client, err := NewClient(Config{ShopDomain: "acme", AccessToken: "x", APIVersion: "2024-01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.myshopify.com/admin/api/2024-01", client.baseURL)

	client, err = NewClient(Config{ShopDomain: "acme.myshopify.com", AccessToken: "x", APIVersion: "2026-01"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.myshopify.com/admin/api/2026-01", client.baseURL)
}

func TestClient_FetchActiveComponents(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get(accessTokenHeader))

		switch atomic.AddInt32(&calls, 1) {
		case 1:
			assert.Equal(t, "active", r.URL.Query().Get("status"))
			w.Header().Set("Link", fmt.Sprintf(`<http://%s/admin/api/2024-01/products.json?limit=250&page_info=abc123>; rel="next"`, r.Host))
			writeJSON(t, w, map[string]interface{}{"products": []interface{}{
				map[string]interface{}{"id": 1, "title": "Scale", "status": "active", "variants": []interface{}{
					map[string]interface{}{"id": 11, "title": "Default Title", "sku": " SCL-01 ", "inventory_quantity": 10},
				}},
				map[string]interface{}{"id": 2, "title": "Scoop", "status": "active", "variants": []interface{}{
					map[string]interface{}{"id": 21, "title": "Large", "sku": "SCL-02", "inventory_quantity": 3},
					map[string]interface{}{"id": 22, "title": "Small", "sku": nil, "inventory_quantity": 8},
					map[string]interface{}{"id": 23, "title": "Tiny", "sku": "  ", "inventory_quantity": 8},
				}},
			}})
		case 2:
			assert.Equal(t, "abc123", r.URL.Query().Get("page_info"))
			assert.Empty(t, r.URL.Query().Get("status"), "filters are not repeated with page_info")
			w.Header().Set("Link", `<http://example/prev?page_info=zzz>; rel="previous"`)
			writeJSON(t, w, map[string]interface{}{"products": []interface{}{
				map[string]interface{}{"id": 3, "title": "Old", "status": "archived", "variants": []interface{}{
					map[string]interface{}{"id": 31, "title": "Default Title", "sku": "OLD-1", "inventory_quantity": 1},
				}},
				map[string]interface{}{"id": 5, "title": "Unlabelled", "variants": []interface{}{
					map[string]interface{}{"id": 51, "title": "Default Title", "sku": "UNL-1", "inventory_quantity": 7},
				}},
				map[string]interface{}{"id": 4, "title": "Pouch", "status": "active", "variants": []interface{}{
					map[string]interface{}{"id": 41, "title": "Red", "sku": "PCH-R", "inventory_quantity": -2},
				}},
			}})
		default:
			t.Errorf("unexpected request %s", r.URL)
		}
	})

	components, err := client.FetchActiveComponents(context.Background())

	require.NoError(t, err)
	require.Len(t, components, 3)
	assert.Equal(t, entities.SKU("SCL-01"), components[0].SKU)
	assert.Equal(t, "Scale", components[0].Name)
	assert.Equal(t, entities.Quantity(10), components[0].CurrentStock)
	assert.Equal(t, "Scoop - Large", components[1].Name)
	assert.Equal(t, entities.SKU("PCH-R"), components[2].SKU)
	assert.Equal(t, entities.Quantity(0), components[2].AvailableStock())
	for _, c := range components {
		assert.NotEqual(t, entities.SKU("UNL-1"), c.SKU, "products without a status are not sellable")
		assert.NotEqual(t, entities.SKU("OLD-1"), c.SKU, "archived products are not sellable")
	}
}

func TestClient_FetchActiveComponentsRetriesOn429(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "2.0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeJSON(t, w, map[string]interface{}{"products": []interface{}{}})
	})
	var waits []time.Duration
	client.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	components, err := client.FetchActiveComponents(context.Background())

	require.NoError(t, err)
	assert.Empty(t, components)
	assert.Equal(t, []time.Duration{2 * time.Second}, waits)
}

func TestClient_FetchOrders(t *testing.T) {
	after := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/admin/api/2024-01/orders.json", r.URL.Path)
		assert.Equal(t, "any", q.Get("status"))
		assert.Equal(t, "2024-05-01T00:00:00Z", q.Get("created_at_min"))
		assert.Equal(t, "250", q.Get("limit"))
		assert.Equal(t, "line_items,created_at,id", q.Get("fields"))
		assert.Equal(t, "2024-05-30T10:00:00-05:00", q.Get("created_at_max"))

		writeJSON(t, w, map[string]interface{}{"orders": []interface{}{
			map[string]interface{}{"id": 1001, "created_at": "2024-05-29T10:00:00-05:00", "line_items": []interface{}{
				map[string]interface{}{"sku": "SCL-01", "quantity": 2},
				map[string]interface{}{"sku": nil, "quantity": 1},
			}},
		}})
	})

	page, err := client.FetchOrders(context.Background(), after, "2024-05-30T10:00:00-05:00")

	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	o := page.Orders[0]
	assert.Equal(t, "1001", o.ID)
	assert.Equal(t, time.Date(2024, 5, 29, 15, 0, 0, 0, time.UTC), o.CreatedAt)
	assert.Equal(t, []entities.LineItem{{SKU: "SCL-01", Quantity: 2}, {SKU: "", Quantity: 1}}, o.LineItems)
	assert.False(t, page.HasMore, "a short page is the last one")
}

func TestClient_FetchOrdersFullPageSetsCursor(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("created_at_max"), "first page has no upper bound")
		orders := make([]interface{}, repositories.OrderPageSize)
		for i := range orders {
			orders[i] = map[string]interface{}{"id": i, "created_at": fmt.Sprintf("2024-05-%02dT00:00:00Z", 28-i%20)}
		}
		writeJSON(t, w, map[string]interface{}{"orders": orders})
	})

	page, err := client.FetchOrders(context.Background(), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "")

	require.NoError(t, err)
	assert.True(t, page.HasMore)
	assert.Equal(t, "2024-05-19T00:00:00Z", page.NextCursor)
}

func TestClient_FetchOrdersRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.FetchOrders(context.Background(), time.Now(), "")

	var limited *repositories.RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 3*time.Second, limited.RetryAfter)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchOrders(context.Background(), time.Now(), "")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Error(t, client.Ping(context.Background()))
}

func TestClient_Ping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/shop.json", r.URL.Path)
		writeJSON(t, w, map[string]interface{}{"shop": map[string]interface{}{"name": "Acme"}})
	})

	assert.NoError(t, client.Ping(context.Background()))
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header   string
		expected time.Duration
	}{
		{"2", 2 * time.Second},
		{"1.5", 1500 * time.Millisecond},
		{"", 0},
		{"soon", 0},
		{"-1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			if got := parseRetryAfter(tt.header); got != tt.expected {
				t.Errorf("parseRetryAfter(%q) = %v, expected %v", tt.header, got, tt.expected)
			}
		})
	}
}

func TestNextPageInfo(t *testing.T) {
	link := `<https://a.myshopify.com/admin/api/2024-01/products.json?page_info=prev1>; rel="previous", <https://a.myshopify.com/admin/api/2024-01/products.json?limit=250&page_info=next2>; rel="next"`
	assert.Equal(t, "next2", nextPageInfo(link))
	assert.Equal(t, "", nextPageInfo(""))
}
