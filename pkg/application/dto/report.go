package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/domain/services"
)

// StatusSummary counts kits by status
type StatusSummary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Low      int `json:"low"`
	Critical int `json:"critical"`
}

// Report contains the complete output of one reconciliation. Every slice and
// map is a copy; nothing in it aliases engine state.
type Report struct {
	SnapshotID  string                           `json:"snapshot_id"`
	StoreID     string                           `json:"store_id"`
	LoadedAt    time.Time                        `json:"loaded_at"`
	WindowDays  int                              `json:"window_days"`
	Kits        []entities.EffectiveInventory    `json:"kits"`
	Summary     StatusSummary                    `json:"summary"`
	Forecast    []entities.ForecastMetrics       `json:"forecast"`
	KitCosts    map[entities.SKU]decimal.Decimal `json:"kit_costs"`
	Issues      []string                         `json:"issues"`
	Disassembly map[entities.SKU]decimal.Decimal `json:"disassembly,omitempty"`
}

// SystemStatus reports connectivity and catalog sizes. Zero counts after a
// load usually mean a source could not be reached.
type SystemStatus struct {
	StoreID          string    `json:"store_id"`
	StorefrontOnline bool      `json:"storefront_online"`
	CatalogOnline    bool      `json:"catalog_online"`
	Loaded           bool      `json:"loaded"`
	LoadedAt         time.Time `json:"loaded_at"`
	ComponentCount   int       `json:"component_count"`
	KitCount         int       `json:"kit_count"`
	RuleCount        int       `json:"rule_count"`
	// Consistent is false until a snapshot has loaded and passed validation
	Consistent        bool                        `json:"consistent"`
	MissingComponents []services.MissingComponent `json:"missing_components"`
	OrphanedRules     []entities.SKU              `json:"orphaned_rules"`
	Issues            []string                    `json:"issues"`
}
