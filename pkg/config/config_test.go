package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearShopifyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SHOPIFY_SHOP_DOMAIN", "SHOPIFY_ACCESS_TOKEN",
		"SHOPIFY_SHOP_DOMAIN_MX", "SHOPIFY_ACCESS_TOKEN_MX",
		"SHOPIFY_SHOP_DOMAIN_US", "SHOPIFY_ACCESS_TOKEN_US",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadEnv_Defaults(t *testing.T) {
	for _, key := range []string{"VELOCITY_WINDOW_DAYS", "VELOCITY_CACHE_BACKEND", "VELOCITY_CACHE_TTL", "REDIS_DB"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg := LoadEnv()

	assert.Equal(t, 30, cfg.Velocity.WindowDays)
	assert.Equal(t, CacheBackendFile, cfg.Velocity.CacheBackend)
	assert.Equal(t, 6*time.Hour, cfg.Velocity.CacheTTL)
	assert.Equal(t, 0, cfg.Redis.DB)
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("VELOCITY_WINDOW_DAYS", "14")
	t.Setenv("VELOCITY_CACHE_BACKEND", "redis")
	t.Setenv("VELOCITY_CACHE_TTL", "90m")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SHOPIFY_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("LOGGER_DISABLE_CALLER", "true")

	cfg := LoadEnv()

	assert.Equal(t, 14, cfg.Velocity.WindowDays)
	assert.Equal(t, CacheBackendRedis, cfg.Velocity.CacheBackend)
	assert.Equal(t, 90*time.Minute, cfg.Velocity.CacheTTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 0.5, cfg.Shopify.RequestsPerSecond)
	assert.True(t, cfg.Logger.DisableCaller)
}

func TestLoadEnv_MalformedFallsBack(t *testing.T) {
	t.Setenv("VELOCITY_WINDOW_DAYS", "thirty")
	t.Setenv("VELOCITY_CACHE_TTL", "six hours")

	cfg := LoadEnv()

	assert.Equal(t, 30, cfg.Velocity.WindowDays)
	assert.Equal(t, 6*time.Hour, cfg.Velocity.CacheTTL)
}

func TestRequireSpreadsheet(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.RequireSpreadsheet(), ErrMissingSpreadsheetID)

	cfg.Google.SpreadsheetID = "abc"
	assert.NoError(t, cfg.RequireSpreadsheet())
}

func TestResolve_SuffixedCredentials(t *testing.T) {
	clearShopifyEnv(t)
	t.Setenv("SHOPIFY_SHOP_DOMAIN_US", "us-shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN_US", "tok-us")

	store, err := DefaultRegistry().Resolve("USA")
	require.NoError(t, err)

	assert.Equal(t, "usa", store.ID)
	assert.Equal(t, "USA", store.DisplayName)
	assert.Equal(t, " - USA", store.SheetSuffix)
	assert.Equal(t, "2026-01", store.APIVersion)
	assert.Equal(t, "us-shop", store.ShopDomain)
	assert.Equal(t, "tok-us", store.AccessToken)
}

func TestResolve_DefaultStoreUsesLegacyVariables(t *testing.T) {
	clearShopifyEnv(t)
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "legacy-shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "legacy-token")

	store, err := DefaultRegistry().Resolve("")
	require.NoError(t, err)

	assert.Equal(t, DefaultStore, store.ID)
	assert.Equal(t, "legacy-shop", store.ShopDomain)
	assert.Equal(t, "Segmail", store.LocationName)
}

func TestResolve_LegacyFallbackOnlyForMexico(t *testing.T) {
	clearShopifyEnv(t)
	t.Setenv("SHOPIFY_SHOP_DOMAIN", "legacy-shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN", "legacy-token")

	_, err := DefaultRegistry().Resolve("usa")
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Contains(t, err.Error(), "USA store")
	assert.Contains(t, err.Error(), "SHOPIFY_SHOP_DOMAIN_US")
}

func TestResolve_UnsupportedStore(t *testing.T) {
	_, err := DefaultRegistry().Resolve("canada")
	require.ErrorIs(t, err, ErrUnsupportedStore)
	assert.Contains(t, err.Error(), "mexico, usa")
}

func TestAvailableAndAll(t *testing.T) {
	clearShopifyEnv(t)
	t.Setenv("SHOPIFY_SHOP_DOMAIN_US", "us-shop")
	t.Setenv("SHOPIFY_ACCESS_TOKEN_US", "tok-us")

	reg := DefaultRegistry()
	assert.Equal(t, map[string]string{"usa": "USA"}, reg.Available())
	assert.Equal(t, map[string]string{"mexico": "Mexico", "usa": "USA"}, reg.All())
	assert.Equal(t, []string{"mexico", "usa"}, reg.IDs())
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stores.yaml")
	content := `stores:
  Canada:
    display_name: Canada
    env_suffix: _CA
    sheet_suffix: " - Canada"
    api_version: "2025-04"
  test:
    env_suffix: _TEST
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"canada", "test"}, reg.IDs())
	def, err := reg.Definition("CANADA")
	require.NoError(t, err)
	assert.Equal(t, " - Canada", def.SheetSuffix)
	assert.Equal(t, "2025-04", def.APIVersion)
	assert.Equal(t, "test", reg["test"].DisplayName)
}

func TestLoadRegistry_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadRegistry(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("stores: {}\n"), 0o644))
	_, err = LoadRegistry(empty)
	assert.ErrorContains(t, err, "defines no stores")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("stores: [unterminated\n"), 0o644))
	_, err = LoadRegistry(bad)
	assert.ErrorContains(t, err, "parse store registry")

	reg, err := LoadRegistry("")
	require.NoError(t, err)
	assert.Len(t, reg, 2)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", LoggerConfig{Level: "warn", Encoding: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	dev, err := NewLogger("development", LoggerConfig{Level: "error", Encoding: "json"})
	require.NoError(t, err)
	assert.True(t, dev.Core().Enabled(-1))

	_, err = NewLogger("production", LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}
