package memory

import (
	"context"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

// ComponentSource provides in-memory storefront stock
type ComponentSource struct {
	components []entities.Component
}

// NewComponentSource creates a new in-memory component source
func NewComponentSource(components ...entities.Component) *ComponentSource {
	s := &ComponentSource{components: make([]entities.Component, 0, len(components))}
	for _, c := range components {
		s.AddComponent(c)
	}
	return s
}

// Verify interface compliance
var _ repositories.ComponentSource = (*ComponentSource)(nil)
var _ repositories.Pinger = (*ComponentSource)(nil)

// AddComponent adds a component; components without a SKU are ignored
func (s *ComponentSource) AddComponent(c entities.Component) {
	if c.SKU == "" {
		return
	}
	s.components = append(s.components, c)
}

// FetchActiveComponents returns a copy of all stored components
func (s *ComponentSource) FetchActiveComponents(ctx context.Context) ([]entities.Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]entities.Component, len(s.components))
	copy(out, s.components)
	return out, nil
}

// Ping always succeeds
func (s *ComponentSource) Ping(ctx context.Context) error {
	return ctx.Err()
}
