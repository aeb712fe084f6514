package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/config"
)

// ClearCacheCommand drops the cached sales velocity of a store
type ClearCacheCommand struct {
	storeID string
	runtime *Runtime
}

// NewClearCacheCommand creates a new clear-cache command
func NewClearCacheCommand(storeID string, runtime *Runtime) *ClearCacheCommand {
	return &ClearCacheCommand{storeID: storeID, runtime: runtime}
}

// Execute runs the clear-cache command
func (c *ClearCacheCommand) Execute(ctx context.Context) error {
	svc, cleanup, err := c.runtime.newCacheService(c.storeID)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.ClearVelocityCache(ctx, ""); err != nil {
		return fmt.Errorf("failed to clear velocity cache: %w", err)
	}

	storeID := strings.ToLower(c.storeID)
	if storeID == "" {
		storeID = config.DefaultStore
	}
	c.runtime.Logger.Info("velocity cache cleared",
		zap.String("store_id", storeID),
		zap.String("backend", c.runtime.Env.Velocity.CacheBackend))
	fmt.Fprintf(c.runtime.Out, "Cleared sales velocity cache for %s\n", storeID)
	return nil
}
