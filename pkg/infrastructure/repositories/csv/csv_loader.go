package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
	"github.com/vsinha/kitinv/pkg/infrastructure/records"
	"github.com/vsinha/kitinv/pkg/infrastructure/repositories/memory"
)

// Scenario file names. The first four mirror the curated sheets; components
// and orders stand in for the storefront.
const (
	KitMasterFile        = "kit_master.csv"
	ComponentMappingFile = "component_mapping.csv"
	BusinessRulesFile    = "business_rules.csv"
	ProductCostsFile     = "product_costs.csv"
	ComponentsFile       = "components.csv"
	OrdersFile           = "orders.csv"
)

// Loader reads a scenario directory of CSV exports and serves it through the
// same source interfaces as the live integrations
type Loader struct {
	dir    string
	parser *records.Parser
	logger *zap.Logger

	ordersOnce sync.Once
	orders     *memory.OrderSource
	ordersErr  error
}

// NewLoader creates a new CSV loader for a scenario directory
func NewLoader(dir string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		dir:    dir,
		parser: records.NewParser(logger),
		logger: logger,
	}
}

// Verify interface compliance
var (
	_ repositories.ComponentSource   = (*Loader)(nil)
	_ repositories.BOMSource         = (*Loader)(nil)
	_ repositories.ProductCostSource = (*Loader)(nil)
	_ repositories.OrderSource       = (*Loader)(nil)
	_ repositories.Pinger            = (*Loader)(nil)
)

// Ping checks that the scenario directory exists
func (l *Loader) Ping(ctx context.Context) error {
	info, err := os.Stat(l.dir)
	if err != nil {
		return fmt.Errorf("scenario directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scenario path %s is not a directory", l.dir)
	}
	return nil
}

// FetchActiveComponents loads components.csv
func (l *Loader) FetchActiveComponents(ctx context.Context) ([]entities.Component, error) {
	recs, err := l.readFile(ComponentsFile, true, "sku", "current_stock")
	if err != nil {
		return nil, err
	}
	components := l.parser.Components(recs)
	now := time.Now()
	for i := range components {
		components[i].LastUpdated = now
	}
	return components, nil
}

// FetchKits loads kit_master.csv
func (l *Loader) FetchKits(ctx context.Context) ([]entities.Kit, error) {
	recs, err := l.readFile(KitMasterFile, true, records.ColKitSKU)
	if err != nil {
		return nil, err
	}
	return l.parser.Kits(recs), nil
}

// FetchKitComponents loads component_mapping.csv
func (l *Loader) FetchKitComponents(ctx context.Context) (map[entities.SKU][]entities.KitComponent, error) {
	recs, err := l.readFile(ComponentMappingFile, true, records.ColKitSKU, records.ColComponentSKU)
	if err != nil {
		return nil, err
	}
	return l.parser.KitComponents(recs), nil
}

// FetchBusinessRules loads business_rules.csv
func (l *Loader) FetchBusinessRules(ctx context.Context) (map[entities.SKU]entities.BusinessRule, error) {
	recs, err := l.readFile(BusinessRulesFile, true, records.ColComponentSKU)
	if err != nil {
		return nil, err
	}
	return l.parser.BusinessRules(recs), nil
}

// FetchProductCosts loads product_costs.csv; the file is optional
func (l *Loader) FetchProductCosts(ctx context.Context) (map[entities.SKU]entities.ProductCost, error) {
	recs, err := l.readFile(ProductCostsFile, false, records.ColSKU)
	if err != nil {
		return nil, err
	}
	return l.parser.ProductCosts(recs), nil
}

// FetchOrders pages through orders.csv, newest first. Without the file the
// history is empty.
func (l *Loader) FetchOrders(ctx context.Context, createdAfter time.Time, cursor string) (repositories.OrderPage, error) {
	l.ordersOnce.Do(func() {
		recs, err := l.readFile(OrdersFile, false, "order_id", "created_at", "sku", "quantity")
		if err != nil {
			l.ordersErr = err
			return
		}
		l.orders = memory.NewOrderSource(l.parser.Orders(recs)...)
	})
	if l.ordersErr != nil {
		return repositories.OrderPage{}, l.ordersErr
	}
	return l.orders.FetchOrders(ctx, createdAfter, cursor)
}

// readFile reads a CSV file into records after checking its header carries the
// required columns. A missing optional file yields no records.
func (l *Loader) readFile(name string, required bool, columns ...string) ([]records.Record, error) {
	filename := filepath.Join(l.dir, name)
	file, err := os.Open(filename)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("optional scenario file not present", zap.String("file", filename))
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s must have a header row", name)
	}
	if missing := missingColumns(rows[0], columns); len(missing) > 0 {
		return nil, fmt.Errorf("%s header is missing columns %v, got %v", name, missing, rows[0])
	}

	return records.FromRows(rows), nil
}

func missingColumns(header, required []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}
