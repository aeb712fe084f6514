// Package filecache stores velocity aggregates as one JSON file per store.
// The file's modification time is the cache timestamp.
package filecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

var unsafeStoreChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Cache is a directory of per-store velocity cache files
type Cache struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time
}

// New creates a file cache rooted at dir. The directory is created on first write.
func New(dir string, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	return &Cache{dir: dir, logger: logger, now: time.Now}
}

// Verify interface compliance
var _ repositories.VelocityCache = (*Cache)(nil)

// Path returns the cache file used for a store
func (c *Cache) Path(storeID string) string {
	name := unsafeStoreChars.ReplaceAllString(storeID, "_")
	return filepath.Join(c.dir, fmt.Sprintf("sales_velocity_%s.json", name))
}

// Get reads the store's cache file if it was modified less than ttl ago.
// An unreadable or corrupt file is reported as a miss.
func (c *Cache) Get(ctx context.Context, storeID string, ttl time.Duration) (map[entities.SKU]entities.Quantity, bool, error) {
	path := c.Path(storeID)

	info, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("velocity cache stat failed", zap.String("path", path), zap.Error(err))
		}
		return nil, false, nil
	}

	age := c.now().Sub(info.ModTime())
	if age >= ttl {
		c.logger.Debug("velocity cache stale", zap.String("path", path), zap.Duration("age", age))
		return nil, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn("velocity cache unreadable", zap.String("path", path), zap.Error(err))
		return nil, false, nil
	}

	var units map[entities.SKU]entities.Quantity
	if err := json.Unmarshal(data, &units); err != nil {
		c.logger.Warn("velocity cache corrupt", zap.String("path", path), zap.Error(err))
		return nil, false, nil
	}
	if units == nil {
		units = make(map[entities.SKU]entities.Quantity)
	}

	c.logger.Debug("velocity cache hit", zap.String("path", path), zap.Duration("age", age))
	return units, true, nil
}

// Put writes the store's cache file through a temporary file so readers never
// see a partial payload
func (c *Cache) Put(ctx context.Context, storeID string, units map[entities.SKU]entities.Quantity) error {
	if units == nil {
		units = make(map[entities.SKU]entities.Quantity)
	}
	data, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("failed to encode velocity cache: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}

	tmp, err := os.CreateTemp(c.dir, ".sales_velocity_*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	path := c.Path(storeID)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cache file %s: %w", path, err)
	}
	return nil
}

// Clear deletes the store's cache file
func (c *Cache) Clear(ctx context.Context, storeID string) error {
	err := os.Remove(c.Path(storeID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}
