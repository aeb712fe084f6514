package velocity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
)

var (
	// ErrSourceUnavailable wraps any order source failure other than rate limiting
	ErrSourceUnavailable = errors.New("order source unavailable")
	// ErrInvalidWindow is returned for a lookback window shorter than one day
	ErrInvalidWindow = errors.New("velocity window must be at least one day")
)

// Config holds the aggregation limits
type Config struct {
	CacheTTL time.Duration
	PageSize int
	// MaxOrders bounds the total number of orders processed in one sweep
	MaxOrders int
	// DefaultRetryAfter is used when a rate-limit signal carries no delay
	DefaultRetryAfter time.Duration
}

// DefaultConfig returns the production aggregation limits
func DefaultConfig() Config {
	return Config{
		CacheTTL:          6 * time.Hour,
		PageSize:          repositories.OrderPageSize,
		MaxOrders:         50000,
		DefaultRetryAfter: time.Second,
	}
}

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock overrides the clock used for the window start
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithSleeper overrides how rate-limit backoff waits
func WithSleeper(sleep Sleeper) Option {
	return func(a *Aggregator) { a.sleep = sleep }
}

// WithConfig overrides the aggregation limits
func WithConfig(cfg Config) Option {
	return func(a *Aggregator) { a.config = cfg }
}

// Aggregator totals units sold per SKU over a lookback window, caching the
// result per store
type Aggregator struct {
	source repositories.OrderSource
	cache  repositories.VelocityCache
	logger *zap.Logger
	config Config
	now    func() time.Time
	sleep  Sleeper
}

// NewAggregator creates a new sales velocity aggregator. cache may be nil,
// in which case every call sweeps the order source.
func NewAggregator(source repositories.OrderSource, cache repositories.VelocityCache, logger *zap.Logger, opts ...Option) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Aggregator{
		source: source,
		cache:  cache,
		logger: logger,
		config: DefaultConfig(),
		now:    time.Now,
		sleep:  contextSleep,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// UnitsSold returns total units sold per SKU in the last windowDays days.
// A fresh cache entry is returned as-is without touching the order source.
func (a *Aggregator) UnitsSold(ctx context.Context, storeID string, windowDays int) (map[entities.SKU]entities.Quantity, error) {
	if windowDays < 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWindow, windowDays)
	}

	logger := a.logger.With(zap.String("store", storeID), zap.Int("window_days", windowDays))

	if a.cache != nil {
		units, ok, err := a.cache.Get(ctx, storeID, a.config.CacheTTL)
		switch {
		case err != nil:
			logger.Warn("velocity cache read failed, treating as miss", zap.Error(err))
		case ok:
			logger.Debug("using cached sales velocity", zap.Int("skus", len(units)))
			return units, nil
		}
	}

	units, err := a.sweep(ctx, logger, windowDays)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if err := a.cache.Put(ctx, storeID, units); err != nil {
			logger.Warn("velocity cache write failed", zap.Error(err))
		}
	}
	return units, nil
}

// ClearCache drops the cached entry for a store so the next call sweeps again
func (a *Aggregator) ClearCache(ctx context.Context, storeID string) error {
	if a.cache == nil {
		return nil
	}
	if err := a.cache.Clear(ctx, storeID); err != nil {
		return fmt.Errorf("failed to clear velocity cache for store %s: %w", storeID, err)
	}
	a.logger.Info("velocity cache cleared", zap.String("store", storeID))
	return nil
}

// sweep pages through order history newest first until a page reaches past
// the window start, a short page arrives, or the order ceiling is hit
func (a *Aggregator) sweep(ctx context.Context, logger *zap.Logger, windowDays int) (map[entities.SKU]entities.Quantity, error) {
	windowStart := a.now().UTC().AddDate(0, 0, -windowDays)
	units := make(map[entities.SKU]entities.Quantity)
	// page boundaries share a timestamp, so the same order can appear twice
	seen := make(map[string]struct{})

	cursor := ""
	processed := 0
	pages := 0

	for {
		if processed >= a.config.MaxOrders {
			logger.Warn("order ceiling reached, velocity may be understated", zap.Int("max_orders", a.config.MaxOrders))
			break
		}
		page, err := a.fetchPage(ctx, logger, windowStart, cursor)
		if err != nil {
			return nil, err
		}
		pages++
		if len(page.Orders) == 0 {
			break
		}
		processed += len(page.Orders)

		reachedWindowStart := false
		var oldest time.Time
		for _, order := range page.Orders {
			if oldest.IsZero() || (!order.CreatedAt.IsZero() && order.CreatedAt.Before(oldest)) {
				oldest = order.CreatedAt
			}
			if order.Before(windowStart) {
				reachedWindowStart = true
				continue
			}
			if order.ID != "" {
				if _, dup := seen[order.ID]; dup {
					continue
				}
				seen[order.ID] = struct{}{}
			}
			for _, item := range order.LineItems {
				if item.Countable() {
					units[item.SKU] += item.Quantity
				}
			}
		}

		logger.Debug("processed order page",
			zap.Int("page", pages),
			zap.Int("orders", len(page.Orders)),
			zap.Time("oldest", oldest))

		if reachedWindowStart {
			logger.Debug("reached orders older than the window", zap.Time("window_start", windowStart))
			break
		}
		if len(page.Orders) < a.config.PageSize || !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	logger.Info("aggregated sales velocity",
		zap.Int("pages", pages),
		zap.Int("orders", processed),
		zap.Int("skus", len(units)))
	return units, nil
}

// fetchPage requests one page, waiting out rate limits for as long as the
// source keeps asking
func (a *Aggregator) fetchPage(ctx context.Context, logger *zap.Logger, windowStart time.Time, cursor string) (repositories.OrderPage, error) {
	for attempt := 1; ; attempt++ {
		page, err := a.source.FetchOrders(ctx, windowStart, cursor)
		if err == nil {
			return page, nil
		}

		var limited *repositories.RateLimitedError
		if !errors.As(err, &limited) {
			logger.Error("order page request failed", zap.String("cursor", cursor), zap.Error(err))
			return repositories.OrderPage{}, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		}

		wait := limited.RetryAfter
		if wait <= 0 {
			wait = a.config.DefaultRetryAfter
		}
		logger.Info("rate limited, backing off", zap.Duration("wait", wait), zap.Int("attempt", attempt))
		if err := a.sleep(ctx, wait); err != nil {
			return repositories.OrderPage{}, fmt.Errorf("rate-limit backoff interrupted: %w", err)
		}
	}
}
