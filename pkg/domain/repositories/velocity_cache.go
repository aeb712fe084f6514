package repositories

import (
	"context"
	"time"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// VelocityCache persists units-sold aggregates per store
type VelocityCache interface {
	// Get returns the cached entry when it is younger than ttl. A missing or
	// stale entry is reported as ok=false with a nil error.
	Get(ctx context.Context, storeID string, ttl time.Duration) (units map[entities.SKU]entities.Quantity, ok bool, err error)
	// Put replaces the entry for the store, stamping it with the current time
	Put(ctx context.Context, storeID string, units map[entities.SKU]entities.Quantity) error
	// Clear removes the entry for the store; clearing a missing entry is not an error
	Clear(ctx context.Context, storeID string) error
}
