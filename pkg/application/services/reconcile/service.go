package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/application/dto"
	"github.com/vsinha/kitinv/pkg/application/services/inventory"
	"github.com/vsinha/kitinv/pkg/application/services/velocity"
	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
	"github.com/vsinha/kitinv/pkg/domain/services"
)

// ErrNotLoaded is returned by compute operations before the first Load
var ErrNotLoaded = errors.New("reconciliation data not loaded")

// Sources are the catalogs a load cycle reads from. Costs is optional.
type Sources struct {
	Components repositories.ComponentSource
	BOM        repositories.BOMSource
	Costs      repositories.ProductCostSource
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source used to stamp snapshots
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service runs load cycles and answers reconciliation queries against the most
// recently loaded snapshot
type Service struct {
	storeID    string
	windowDays int
	sources    Sources
	velocity   *velocity.Aggregator
	engine     *inventory.Engine
	validator  *services.ConsistencyValidator
	logger     *zap.Logger
	now        func() time.Time

	mu       sync.RWMutex
	snapshot *entities.Snapshot
}

// NewService creates a reconciler for one store. A nil aggregator means every
// component is treated as having no sales.
func NewService(storeID string, windowDays int, sources Sources, aggregator *velocity.Aggregator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		storeID:    storeID,
		windowDays: windowDays,
		sources:    sources,
		velocity:   aggregator,
		engine:     inventory.NewEngine(logger),
		validator:  services.NewConsistencyValidator(),
		logger:     logger.With(zap.String("store_id", storeID)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches every catalog, aggregates sales velocity and swaps in a new
// snapshot. A failing fetch is logged and contributes an empty result; only a
// cancelled context or an invalid window aborts the cycle.
func (s *Service) Load(ctx context.Context) (*entities.Snapshot, error) {
	if s.windowDays < 1 {
		return nil, fmt.Errorf("%w: %d days", velocity.ErrInvalidWindow, s.windowDays)
	}

	start := s.now()
	s.logger.Info("loading reconciliation data", zap.Int("window_days", s.windowDays))

	components := s.fetchComponents(ctx)
	kits := s.fetchKits(ctx)
	rules := s.fetchRules(ctx)
	costs := s.fetchCosts(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	units := s.fetchUnitsSold(ctx)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cancelled: %w", err)
	}

	for i := range components {
		components[i].UnitsSold = units[components[i].SKU]
		if c, ok := costs[components[i].SKU]; ok {
			components[i].UnitCost = c.UnitCost
		}
	}

	snapshot := entities.NewSnapshot(entities.SnapshotData{
		StoreID:    s.storeID,
		LoadedAt:   start,
		WindowDays: s.windowDays,
		Components: components,
		Kits:       kits,
		Rules:      rules,
		Costs:      costs,
	})

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	s.logger.Info("reconciliation data loaded",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Int("components", snapshot.ComponentCount()),
		zap.Int("kits", snapshot.KitCount()),
		zap.Int("rules", snapshot.RuleCount()),
		zap.Duration("elapsed", s.now().Sub(start)))

	return snapshot, nil
}

func (s *Service) fetchComponents(ctx context.Context) []entities.Component {
	if s.sources.Components == nil {
		return nil
	}
	components, err := s.sources.Components.FetchActiveComponents(ctx)
	if err != nil {
		s.logger.Error("failed to fetch components", zap.Error(err))
		return nil
	}
	return components
}

// fetchKits attaches each kit's BOM lines. Lines for kits missing from the
// kit master are ignored.
func (s *Service) fetchKits(ctx context.Context) []entities.Kit {
	if s.sources.BOM == nil {
		return nil
	}
	kits, err := s.sources.BOM.FetchKits(ctx)
	if err != nil {
		s.logger.Error("failed to fetch kits", zap.Error(err))
		return nil
	}
	lines, err := s.sources.BOM.FetchKitComponents(ctx)
	if err != nil {
		s.logger.Error("failed to fetch kit components", zap.Error(err))
		lines = nil
	}

	known := make(map[entities.SKU]bool, len(kits))
	for i := range kits {
		known[kits[i].SKU] = true
		kits[i].Components = append([]entities.KitComponent(nil), lines[kits[i].SKU]...)
	}
	for sku := range lines {
		if !known[sku] {
			s.logger.Debug("ignoring components of unknown kit", zap.String("kit_sku", string(sku)))
		}
	}
	return kits
}

func (s *Service) fetchRules(ctx context.Context) map[entities.SKU]entities.BusinessRule {
	if s.sources.BOM == nil {
		return nil
	}
	rules, err := s.sources.BOM.FetchBusinessRules(ctx)
	if err != nil {
		s.logger.Error("failed to fetch business rules", zap.Error(err))
		return nil
	}
	return rules
}

func (s *Service) fetchCosts(ctx context.Context) map[entities.SKU]entities.ProductCost {
	if s.sources.Costs == nil {
		return nil
	}
	costs, err := s.sources.Costs.FetchProductCosts(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch product costs", zap.Error(err))
		return nil
	}
	return costs
}

func (s *Service) fetchUnitsSold(ctx context.Context) map[entities.SKU]entities.Quantity {
	if s.velocity == nil {
		return nil
	}
	units, err := s.velocity.UnitsSold(ctx, s.storeID, s.windowDays)
	if err != nil {
		s.logger.Warn("sales velocity unavailable, assuming no sales", zap.Error(err))
		return nil
	}
	return units
}

// Snapshot returns the current snapshot
func (s *Service) Snapshot() (*entities.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNotLoaded
	}
	return s.snapshot, nil
}

// ComputeEffectiveInventory computes buildable quantities for the kits in scope
func (s *Service) ComputeEffectiveInventory(scope inventory.Scope) ([]entities.EffectiveInventory, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.engine.ComputeEffectiveInventory(snapshot, scope), nil
}

// GetForecastMetrics returns restocking metrics for every component
func (s *Service) GetForecastMetrics() (map[entities.SKU]entities.ForecastMetrics, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.engine.ForecastMetrics(snapshot), nil
}

// ValidateConsistency lists catalog issues; an empty slice means none
func (s *Service) ValidateConsistency() ([]string, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.validator.Validate(snapshot).Issues, nil
}

// KitCosts returns manual costs merged with kit roll-ups
func (s *Service) KitCosts() (map[entities.SKU]decimal.Decimal, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.engine.KitCosts(snapshot), nil
}

// SimulateDisassembly returns the component units recovered by taking kits apart
func (s *Service) SimulateDisassembly(kitSKU entities.SKU, quantity entities.Quantity) (map[entities.SKU]decimal.Decimal, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return s.engine.SimulateDisassembly(snapshot, kitSKU, quantity)
}

// ClearVelocityCache drops the cached aggregate for a store; an empty id means
// this service's store
func (s *Service) ClearVelocityCache(ctx context.Context, storeID string) error {
	if s.velocity == nil {
		return nil
	}
	if storeID == "" {
		storeID = s.storeID
	}
	return s.velocity.ClearCache(ctx, storeID)
}

// Report assembles every view of the current snapshot. All views are computed
// from the same snapshot even if a reload happens meanwhile.
func (s *Service) Report(scope inventory.Scope) (*dto.Report, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}

	kits := s.engine.ComputeEffectiveInventory(snapshot, scope)
	counts := inventory.Summarize(kits)

	return &dto.Report{
		SnapshotID: snapshot.ID.String(),
		StoreID:    snapshot.StoreID,
		LoadedAt:   snapshot.LoadedAt,
		WindowDays: snapshot.WindowDays,
		Kits:       kits,
		Summary: dto.StatusSummary{
			Total:    counts.Total,
			OK:       counts.OK,
			Low:      counts.Low,
			Critical: counts.Critical,
		},
		Forecast: s.engine.ForecastList(snapshot),
		KitCosts: s.engine.KitCosts(snapshot),
		Issues:   s.validator.Validate(snapshot).Issues,
	}, nil
}

// SystemStatus probes the sources and reports catalog sizes from the current
// snapshot. It does not require a prior Load.
func (s *Service) SystemStatus(ctx context.Context) *dto.SystemStatus {
	status := &dto.SystemStatus{
		StoreID:           s.storeID,
		StorefrontOnline:  s.ping(ctx, "storefront", s.sources.Components),
		CatalogOnline:     s.ping(ctx, "catalog", s.sources.BOM),
		MissingComponents: []services.MissingComponent{},
		OrphanedRules:     []entities.SKU{},
		Issues:            []string{},
	}

	snapshot, err := s.Snapshot()
	if err != nil {
		return status
	}
	status.Loaded = true
	status.LoadedAt = snapshot.LoadedAt
	status.ComponentCount = snapshot.ComponentCount()
	status.KitCount = snapshot.KitCount()
	status.RuleCount = snapshot.RuleCount()

	consistency := s.validator.Validate(snapshot)
	status.Consistent = consistency.Valid()
	status.MissingComponents = consistency.MissingComponents
	status.OrphanedRules = consistency.OrphanedRules
	status.Issues = consistency.Issues
	return status
}

// ping reports a source as online when it answers a ping. Sources that cannot
// be pinged count as online when present.
func (s *Service) ping(ctx context.Context, name string, source interface{}) bool {
	if source == nil {
		return false
	}
	pinger, ok := source.(repositories.Pinger)
	if !ok {
		return true
	}
	if err := pinger.Ping(ctx); err != nil {
		s.logger.Warn("source unreachable", zap.String("source", name), zap.Error(err))
		return false
	}
	return true
}
