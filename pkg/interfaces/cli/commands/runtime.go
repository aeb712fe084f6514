package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/vsinha/kitinv/pkg/application/services/reconcile"
	"github.com/vsinha/kitinv/pkg/application/services/velocity"
	"github.com/vsinha/kitinv/pkg/config"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
	"github.com/vsinha/kitinv/pkg/infrastructure/cache/filecache"
	"github.com/vsinha/kitinv/pkg/infrastructure/cache/rediscache"
	"github.com/vsinha/kitinv/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/kitinv/pkg/infrastructure/repositories/sheets"
	"github.com/vsinha/kitinv/pkg/infrastructure/shopify"
)

// Runtime is the environment shared by every command
type Runtime struct {
	Env      *config.Config
	Registry config.Registry
	Logger   *zap.Logger
	Out      io.Writer
}

// serviceOptions selects how a reconciler is wired
type serviceOptions struct {
	storeID     string
	scenarioDir string
	windowDays  int
}

// newService wires a reconciler. A scenario directory replaces every live
// integration with its CSV exports and disables the velocity cache. The
// returned cleanup releases cache connections.
func (rt *Runtime) newService(ctx context.Context, opts serviceOptions) (*reconcile.Service, func(), error) {
	logger := rt.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	windowDays := opts.windowDays
	if windowDays == 0 {
		windowDays = rt.Env.Velocity.WindowDays
	}

	if opts.scenarioDir != "" {
		storeID := strings.ToLower(opts.storeID)
		if storeID == "" {
			storeID = config.DefaultStore
		}
		loader := csv.NewLoader(opts.scenarioDir, logger)
		aggregator := velocity.NewAggregator(loader, nil, logger, velocity.WithConfig(rt.velocityConfig()))
		sources := reconcile.Sources{Components: loader, BOM: loader, Costs: loader}
		return reconcile.NewService(storeID, windowDays, sources, aggregator, logger), func() {}, nil
	}

	store, err := rt.Registry.Resolve(opts.storeID)
	if err != nil {
		return nil, nil, err
	}
	if err := rt.Env.RequireSpreadsheet(); err != nil {
		return nil, nil, err
	}

	shop, err := shopify.NewClient(shopify.Config{
		ShopDomain:        store.ShopDomain,
		AccessToken:       store.AccessToken,
		APIVersion:        store.APIVersion,
		RequestsPerSecond: rt.Env.Shopify.RequestsPerSecond,
		Burst:             rt.Env.Shopify.Burst,
		Timeout:           rt.Env.Shopify.Timeout,
	}, logger.With(zap.String("store_id", store.ID)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create shopify client: %w", err)
	}

	catalog, err := sheets.NewSource(ctx, rt.Env.Google.SpreadsheetID, store.SheetSuffix, logger,
		option.WithCredentialsFile(rt.Env.Google.CredentialsPath))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sheets source: %w", err)
	}

	cache, cleanup, err := rt.velocityCache()
	if err != nil {
		return nil, nil, err
	}

	aggregator := velocity.NewAggregator(shop, cache, logger, velocity.WithConfig(rt.velocityConfig()))
	sources := reconcile.Sources{Components: shop, BOM: catalog, Costs: catalog}
	return reconcile.NewService(store.ID, windowDays, sources, aggregator, logger), cleanup, nil
}

// newCacheService wires a reconciler with no sources, enough to manage the
// velocity cache of a store without credentials
func (rt *Runtime) newCacheService(storeID string) (*reconcile.Service, func(), error) {
	if _, err := rt.Registry.Definition(storeID); err != nil {
		return nil, nil, err
	}
	if storeID == "" {
		storeID = config.DefaultStore
	}
	storeID = strings.ToLower(storeID)

	cache, cleanup, err := rt.velocityCache()
	if err != nil {
		return nil, nil, err
	}
	aggregator := velocity.NewAggregator(nil, cache, rt.Logger, velocity.WithConfig(rt.velocityConfig()))
	return reconcile.NewService(storeID, rt.Env.Velocity.WindowDays, reconcile.Sources{}, aggregator, rt.Logger), cleanup, nil
}

func (rt *Runtime) velocityConfig() velocity.Config {
	cfg := velocity.DefaultConfig()
	if rt.Env.Velocity.CacheTTL > 0 {
		cfg.CacheTTL = rt.Env.Velocity.CacheTTL
	}
	return cfg
}

func (rt *Runtime) velocityCache() (repositories.VelocityCache, func(), error) {
	switch rt.Env.Velocity.CacheBackend {
	case config.CacheBackendFile, "":
		return filecache.New(rt.Env.Velocity.CacheDir, rt.Logger), func() {}, nil
	case config.CacheBackendRedis:
		cache := rediscache.New(rt.Env.Redis.Addr, rt.Env.Redis.Password, rt.Env.Redis.DB, rt.Logger)
		return cache, func() {
			if err := cache.Close(); err != nil {
				rt.Logger.Warn("failed to close redis client", zap.Error(err))
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported velocity cache backend: %s", rt.Env.Velocity.CacheBackend)
	}
}
