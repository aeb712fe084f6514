// Package sheets reads the curated kit catalog from a Google Sheets spreadsheet
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/repositories"
	"github.com/vsinha/kitinv/pkg/infrastructure/records"
)

// Worksheet base names; each store appends its own suffix
const (
	KitMasterSheet        = "Kit Master"
	ComponentMappingSheet = "Component Mapping"
	BusinessRulesSheet    = "Business Rules"
	ProductCostsSheet     = "Product Costs"
)

// ErrMissingSpreadsheetID is returned when no spreadsheet is configured
var ErrMissingSpreadsheetID = errors.New("google spreadsheet id is required")

// Source reads one store's worksheets
type Source struct {
	service       *sheets.Service
	spreadsheetID string
	suffix        string
	parser        *records.Parser
	logger        *zap.Logger
}

// NewSource creates a Sheets-backed catalog source. suffix is appended to
// every worksheet name, e.g. " - Mexico".
func NewSource(ctx context.Context, spreadsheetID, suffix string, logger *zap.Logger, opts ...option.ClientOption) (*Source, error) {
	if spreadsheetID == "" {
		return nil, ErrMissingSpreadsheetID
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	opts = append([]option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}, opts...)
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Source{
		service:       service,
		spreadsheetID: spreadsheetID,
		suffix:        suffix,
		parser:        records.NewParser(logger),
		logger:        logger,
	}, nil
}

// Verify interface compliance
var (
	_ repositories.BOMSource         = (*Source)(nil)
	_ repositories.ProductCostSource = (*Source)(nil)
	_ repositories.Pinger            = (*Source)(nil)
)

// WorksheetName returns the store-specific name of a worksheet
func (s *Source) WorksheetName(base string) string {
	return base + s.suffix
}

// Ping checks that the spreadsheet is reachable with the configured credentials
func (s *Source) Ping(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Get(s.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("spreadsheet %s unavailable: %w", s.spreadsheetID, err)
	}
	return nil
}

// FetchKits reads the Kit Master worksheet
func (s *Source) FetchKits(ctx context.Context) ([]entities.Kit, error) {
	recs, err := s.readWorksheet(ctx, KitMasterSheet)
	if err != nil {
		return nil, err
	}
	return s.parser.Kits(recs), nil
}

// FetchKitComponents reads the Component Mapping worksheet
func (s *Source) FetchKitComponents(ctx context.Context) (map[entities.SKU][]entities.KitComponent, error) {
	recs, err := s.readWorksheet(ctx, ComponentMappingSheet)
	if err != nil {
		return nil, err
	}
	return s.parser.KitComponents(recs), nil
}

// FetchBusinessRules reads the Business Rules worksheet
func (s *Source) FetchBusinessRules(ctx context.Context) (map[entities.SKU]entities.BusinessRule, error) {
	recs, err := s.readWorksheet(ctx, BusinessRulesSheet)
	if err != nil {
		return nil, err
	}
	return s.parser.BusinessRules(recs), nil
}

// FetchProductCosts reads the Product Costs worksheet
func (s *Source) FetchProductCosts(ctx context.Context) (map[entities.SKU]entities.ProductCost, error) {
	recs, err := s.readWorksheet(ctx, ProductCostsSheet)
	if err != nil {
		return nil, err
	}
	return s.parser.ProductCosts(recs), nil
}

// readWorksheet fetches every cell of a worksheet as displayed in the sheet
func (s *Source) readWorksheet(ctx context.Context, base string) ([]records.Record, error) {
	name := s.WorksheetName(base)
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, quoteSheetName(name)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", name, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cellString(cell)
		}
		rows = append(rows, cells)
	}

	recs := records.FromRows(rows)
	s.logger.Debug("read worksheet", zap.String("worksheet", name), zap.Int("rows", len(recs)))
	return recs, nil
}

// quoteSheetName renders a worksheet name as an A1 range covering the whole sheet
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func cellString(cell interface{}) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}
