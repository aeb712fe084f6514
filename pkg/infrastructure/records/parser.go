package records

import (
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// Parser converts records into entities
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new record parser
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Kits parses Kit Master rows. Rows without a kit SKU are skipped; an empty
// status cell means the kit is active.
func (p *Parser) Kits(recs []Record) []entities.Kit {
	kits := make([]entities.Kit, 0, len(recs))
	for _, rec := range recs {
		sku := rec.Get(ColKitSKU)
		if sku == "" {
			continue
		}

		kit := entities.Kit{
			SKU:          entities.SKU(sku),
			Name:         rec.Get(ColKitName),
			Description:  rec.Get(ColKitDescription),
			Price:        decimalOr(rec.Get(ColKitPrice), decimal.Zero),
			Active:       isActive(rec.Get(ColKitStatus)),
			CreatedDate:  parseDate(rec.Get(ColKitCreated)),
			LastModified: parseDate(rec.Get(ColKitModified)),
		}
		kits = append(kits, kit)
	}
	return kits
}

func isActive(status string) bool {
	return status == "" || strings.EqualFold(status, "Active")
}

// KitComponents parses Component Mapping rows into BOM lines grouped by kit,
// keeping sheet order. An empty or malformed quantity means one per kit; a
// quantity that parses to zero or less drops the row.
func (p *Parser) KitComponents(recs []Record) map[entities.SKU][]entities.KitComponent {
	byKit := make(map[entities.SKU][]entities.KitComponent)
	for i, rec := range recs {
		kitSKU := rec.Get(ColKitSKU)
		if kitSKU == "" {
			continue
		}

		qty := decimal.NewFromInt(1)
		if raw := rec.Get(ColQuantityPerKit); raw != "" {
			if d, ok := parseDecimal(raw); ok {
				qty = d
			} else {
				p.logger.Debug("unparsable quantity per kit, using 1",
					zap.Int("row", i+2), zap.String("kit_sku", kitSKU), zap.String("value", raw))
			}
		}

		line, err := entities.NewKitComponent(
			entities.SKU(kitSKU),
			entities.SKU(rec.Get(ColComponentSKU)),
			rec.Get(ColComponentName),
			qty,
			decimalOr(rec.Get(ColComponentCost), decimal.Zero),
			yesOr(rec.Get(ColCritical, ColCriticalYN), true),
		)
		if err != nil {
			p.logger.Warn("dropping invalid component mapping row",
				zap.Int("row", i+2), zap.String("kit_sku", kitSKU), zap.Error(err))
			continue
		}
		byKit[line.KitSKU] = append(byKit[line.KitSKU], *line)
	}
	return byKit
}

// BusinessRules parses Business Rules rows. A later row for the same SKU wins.
func (p *Parser) BusinessRules(recs []Record) map[entities.SKU]entities.BusinessRule {
	rules := make(map[entities.SKU]entities.BusinessRule, len(recs))
	for i, rec := range recs {
		sku := rec.Get(ColComponentSKU)
		if sku == "" {
			continue
		}

		priority := entities.PriorityMedium
		if raw := rec.Get(ColPriority, ColPriorityTiers); raw != "" {
			parsed, ok := entities.ParsePriority(raw)
			if !ok {
				p.logger.Debug("unknown priority, using Medium", zap.Int("row", i+2), zap.String("value", raw))
			}
			priority = parsed
		}

		rule := entities.BusinessRule{
			ComponentSKU:        entities.SKU(sku),
			MinimumBufferStock:  entities.Quantity(intOr(rec.Get(ColMinimumBuffer), int64(entities.DefaultMinimumBufferStock))),
			MaximumKitAssembly:  entities.Quantity(intOr(rec.Get(ColMaximumAssembly), int64(entities.DefaultMaximumKitAssembly))),
			LeadTimeDays:        int(intOr(rec.Get(ColLeadTime), entities.DefaultLeadTimeDays)),
			AssemblyTimeMinutes: int(intOr(rec.Get(ColAssemblyTime), entities.DefaultAssemblyTimeMinutes)),
			Priority:            priority,
		}
		if _, dup := rules[rule.ComponentSKU]; dup {
			p.logger.Debug("duplicate business rule, later row wins", zap.String("component_sku", sku))
		}
		rules[rule.ComponentSKU] = rule
	}
	return rules
}

// ProductCosts parses Product Costs rows. A malformed cost is zero; a negative
// cost fails validation and the row is dropped.
func (p *Parser) ProductCosts(recs []Record) map[entities.SKU]entities.ProductCost {
	costs := make(map[entities.SKU]entities.ProductCost, len(recs))
	for i, rec := range recs {
		sku := rec.Get(ColSKU)
		if sku == "" {
			continue
		}
		cost := entities.ProductCost{
			SKU:            entities.SKU(sku),
			UnitCost:       signedDecimalOr(rec.Get(ColUnitCost), decimal.Zero),
			ManualOverride: yesOr(rec.Get(ColManualOverrideYN, ColManualOverride), false),
		}
		if err := entities.Validate(cost); err != nil {
			p.logger.Warn("dropping invalid product cost row", zap.Int("row", i+2), zap.String("sku", sku), zap.Error(err))
			continue
		}
		costs[cost.SKU] = cost
	}
	return costs
}

// Components parses offline stock rows with the columns
// sku, name, current_stock, reserved_stock and unit_cost. Current stock may be
// negative when oversold; a negative reservation or cost fails validation and
// the row is dropped.
func (p *Parser) Components(recs []Record) []entities.Component {
	components := make([]entities.Component, 0, len(recs))
	for i, rec := range recs {
		sku := rec.Get("sku")
		if sku == "" {
			p.logger.Info("skipping component without sku", zap.Int("row", i+2))
			continue
		}
		c := entities.Component{
			SKU:           entities.SKU(sku),
			Name:          rec.Get("name"),
			CurrentStock:  entities.Quantity(signedIntOr(rec.Get("current_stock"), 0)),
			ReservedStock: entities.Quantity(signedIntOr(rec.Get("reserved_stock"), 0)),
			UnitCost:      signedDecimalOr(rec.Get("unit_cost"), decimal.Zero),
		}
		if c.Name == "" {
			c.Name = sku
		}
		if err := entities.Validate(c); err != nil {
			p.logger.Warn("dropping invalid component row", zap.Int("row", i+2), zap.String("sku", sku), zap.Error(err))
			continue
		}
		components = append(components, c)
	}
	return components
}

// signedIntOr is intOr for columns where negative values are meaningful,
// such as oversold stock
func signedIntOr(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return -intOr(s[1:], -def)
	}
	return intOr(s, def)
}

// Orders parses order history rows with the columns order_id, created_at,
// sku and quantity. Rows sharing an order id become line items of one order,
// in first-seen order.
func (p *Parser) Orders(recs []Record) []entities.Order {
	var orders []entities.Order
	index := make(map[string]int)
	for i, rec := range recs {
		id := rec.Get("order_id")
		if id == "" {
			continue
		}

		pos, seen := index[id]
		if !seen {
			createdAt, ok := parseTimestamp(rec.Get("created_at"))
			if !ok {
				p.logger.Warn("order has no usable timestamp", zap.Int("row", i+2), zap.String("order_id", id))
			}
			pos = len(orders)
			index[id] = pos
			orders = append(orders, entities.Order{ID: id, CreatedAt: createdAt})
		}

		item := entities.LineItem{
			SKU:      entities.SKU(rec.Get("sku")),
			Quantity: entities.Quantity(intOr(rec.Get("quantity"), 0)),
		}
		if item.Countable() {
			orders[pos].LineItems = append(orders[pos].LineItems, item)
		}
	}
	return orders
}
