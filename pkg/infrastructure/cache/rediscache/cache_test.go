package rediscache

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// newIntegrationCache requires a running Redis at REDIS_ADDR and skips otherwise
func newIntegrationCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("Skipping Redis integration test: REDIS_ADDR not set")
	}
	cache := New(addr, os.Getenv("REDIS_PASSWORD"), 0, zap.NewNop())
	if err := cache.Ping(context.Background()); err != nil {
		t.Skip("Skipping Redis integration test: redis not available")
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

// newTestCache runs the cache against an in-process Redis server
func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewWithClient(client, zap.NewNop()), server
}

func TestKey(t *testing.T) {
	assert.Equal(t, "kitinv:velocity:mexico", Key("mexico"))
}

func TestCache_Integration(t *testing.T) {
	cache := newIntegrationCache(t)
	ctx := context.Background()
	store := "test-" + time.Now().Format("150405.000000")
	t.Cleanup(func() { _ = cache.Clear(ctx, store) })

	_, ok, err := cache.Get(ctx, store, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	want := map[entities.SKU]entities.Quantity{"SCL-01": 9}
	require.NoError(t, cache.Put(ctx, store, want))

	got, ok, err := cache.Get(ctx, store, time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, ok, err = cache.Get(ctx, store, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "entry older than ttl is stale")

	require.NoError(t, cache.Clear(ctx, store))
	cache.now = time.Now
	_, ok, _ = cache.Get(ctx, store, time.Hour)
	assert.False(t, ok)
}

func TestCache_RoundTrip(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "mexico", 6*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "missing entry is a miss")

	want := map[entities.SKU]entities.Quantity{"SCL-01": 9, "SCL-02": 4}
	require.NoError(t, cache.Put(ctx, "mexico", want))

	got, ok, err := cache.Get(ctx, "mexico", 6*time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), server.HGet(Key("mexico"), fieldStoredAt))
	assert.Equal(t, defaultRetention, server.TTL(Key("mexico")))

	_, ok, err = cache.Get(ctx, "usa", 6*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "entries are kept per store")
}

func TestCache_PutReplacesEntry(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-01": 1, "SCL-02": 2}))
	require.NoError(t, cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-03": 3}))

	got, ok, err := cache.Get(ctx, "mexico", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[entities.SKU]entities.Quantity{"SCL-03": 3}, got)

	require.NoError(t, cache.Put(ctx, "empty", nil))
	got, ok, err = cache.Get(ctx, "empty", time.Hour)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCache_StaleEntry(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()
	written := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return written }
	require.NoError(t, cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-01": 9}))

	testCases := []struct {
		name  string
		age   time.Duration
		fresh bool
	}{
		{"just written", 0, true},
		{"just under ttl", 6*time.Hour - time.Second, true},
		{"exactly ttl", 6 * time.Hour, false},
		{"past ttl", 7 * time.Hour, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cache.now = func() time.Time { return written.Add(tc.age) }
			_, ok, err := cache.Get(ctx, "mexico", 6*time.Hour)
			require.NoError(t, err)
			assert.Equal(t, tc.fresh, ok)
		})
	}

	server.FastForward(defaultRetention + time.Minute)
	assert.False(t, server.Exists(Key("mexico")), "key expires after the retention period")
}

func TestCache_MalformedEntryIsMiss(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	storedAt := strconv.FormatInt(now.Unix(), 10)

	server.HSet(Key("corrupt"), fieldUnits, "{not json", fieldStoredAt, storedAt)
	server.HSet(Key("untimed"), fieldUnits, `{"SCL-01":3}`)
	server.HSet(Key("badtime"), fieldUnits, `{"SCL-01":3}`, fieldStoredAt, "yesterday")

	for _, store := range []string{"corrupt", "untimed", "badtime"} {
		t.Run(store, func(t *testing.T) {
			units, ok, err := cache.Get(ctx, store, time.Hour)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, units)
		})
	}
}

func TestCache_Clear(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-01": 9}))
	require.NoError(t, cache.Clear(ctx, "mexico"))
	assert.False(t, server.Exists(Key("mexico")))

	require.NoError(t, cache.Clear(ctx, "never-written"), "clearing a missing entry is not an error")
}

func TestCache_ServerUnavailable(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, cache.Ping(ctx))

	server.Close()

	assert.Error(t, cache.Ping(ctx))
	_, ok, err := cache.Get(ctx, "mexico", time.Hour)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, cache.Put(ctx, "mexico", map[entities.SKU]entities.Quantity{"SCL-01": 1}))
}
