package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

type cacheEntry struct {
	units    map[entities.SKU]entities.Quantity
	storedAt time.Time
}

// VelocityCache keeps velocity aggregates in process memory
type VelocityCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewVelocityCache creates an empty in-memory velocity cache
func NewVelocityCache() *VelocityCache {
	return &VelocityCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Verify interface compliance
var _ repositories.VelocityCache = (*VelocityCache)(nil)

// SetClock overrides the time source used to stamp and age entries
func (c *VelocityCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns a copy of the entry for the store if it is younger than ttl
func (c *VelocityCache) Get(ctx context.Context, storeID string, ttl time.Duration) (map[entities.SKU]entities.Quantity, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[storeID]
	if !ok || c.now().Sub(entry.storedAt) >= ttl {
		return nil, false, nil
	}
	return copyUnits(entry.units), true, nil
}

// Put replaces the entry for the store
func (c *VelocityCache) Put(ctx context.Context, storeID string, units map[entities.SKU]entities.Quantity) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[storeID] = cacheEntry{units: copyUnits(units), storedAt: c.now()}
	return nil
}

// Clear removes the entry for the store
func (c *VelocityCache) Clear(ctx context.Context, storeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, storeID)
	return nil
}

func copyUnits(units map[entities.SKU]entities.Quantity) map[entities.SKU]entities.Quantity {
	out := make(map[entities.SKU]entities.Quantity, len(units))
	for sku, q := range units {
		out[sku] = q
	}
	return out
}
