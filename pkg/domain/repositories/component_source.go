package repositories

import (
	"context"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// ComponentSource provides live per-SKU stock from the storefront
type ComponentSource interface {
	// FetchActiveComponents returns only sellable items; items without a usable
	// SKU are dropped by the source.
	FetchActiveComponents(ctx context.Context) ([]entities.Component, error)
}

// Pinger is implemented by sources that can check their connection cheaply
type Pinger interface {
	Ping(ctx context.Context) error
}
