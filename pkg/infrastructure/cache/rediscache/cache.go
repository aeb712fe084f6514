// Package rediscache stores velocity aggregates in Redis so several hosts can
// share one sweep per store
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

const (
	keyPrefix        = "kitinv:velocity:"
	fieldUnits       = "units"
	fieldStoredAt    = "stored_at"
	defaultRetention = 24 * time.Hour
)

// Cache keeps one hash per store holding the payload and its write time
type Cache struct {
	client *redis.Client
	logger *zap.Logger
	// retain is how long Redis keeps an entry; freshness is decided by Get's ttl
	retain time.Duration
	now    func() time.Time
}

// New creates a Redis-backed velocity cache
func New(addr, password string, db int, logger *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewWithClient(client, logger)
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{client: client, logger: logger, retain: defaultRetention, now: time.Now}
}

// Verify interface compliance
var _ repositories.VelocityCache = (*Cache)(nil)
var _ repositories.Pinger = (*Cache)(nil)

// Key returns the Redis key used for a store
func Key(storeID string) string {
	return keyPrefix + storeID
}

// Ping checks the Redis connection
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (c *Cache) Close() error {
	return c.client.Close()
}

// Get returns the store's entry when it was written less than ttl ago.
// A malformed entry is a miss.
func (c *Cache) Get(ctx context.Context, storeID string, ttl time.Duration) (map[entities.SKU]entities.Quantity, bool, error) {
	fields, err := c.client.HGetAll(ctx, Key(storeID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis cache read failed: %w", err)
	}
	if len(fields) == 0 {
		return nil, false, nil
	}

	storedAt, err := strconv.ParseInt(fields[fieldStoredAt], 10, 64)
	if err != nil {
		c.logger.Warn("velocity cache entry has no timestamp", zap.String("store", storeID))
		return nil, false, nil
	}
	if c.now().Sub(time.Unix(storedAt, 0)) >= ttl {
		return nil, false, nil
	}

	var units map[entities.SKU]entities.Quantity
	if err := json.Unmarshal([]byte(fields[fieldUnits]), &units); err != nil {
		c.logger.Warn("velocity cache entry corrupt", zap.String("store", storeID), zap.Error(err))
		return nil, false, nil
	}
	if units == nil {
		units = make(map[entities.SKU]entities.Quantity)
	}
	return units, true, nil
}

// Put replaces the store's entry
func (c *Cache) Put(ctx context.Context, storeID string, units map[entities.SKU]entities.Quantity) error {
	if units == nil {
		units = make(map[entities.SKU]entities.Quantity)
	}
	data, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("failed to encode velocity cache: %w", err)
	}

	key := Key(storeID)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fieldUnits, string(data), fieldStoredAt, c.now().Unix())
		pipe.Expire(ctx, key, c.retain)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache write failed: %w", err)
	}
	return nil
}

// Clear deletes the store's entry
func (c *Cache) Clear(ctx context.Context, storeID string) error {
	if err := c.client.Del(ctx, Key(storeID)).Err(); err != nil {
		return fmt.Errorf("redis cache clear failed: %w", err)
	}
	return nil
}
