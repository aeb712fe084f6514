package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vsinha/kitinv/pkg/application/services/inventory"
	"github.com/vsinha/kitinv/pkg/domain/entities"
	"github.com/vsinha/kitinv/pkg/interfaces/cli/output"
)

// Config holds configuration for the reconcile command
type Config struct {
	StoreID        string
	KitSKU         string
	ScenarioDir    string
	OutputDir      string
	Format         string
	WindowDays     int
	Disassemble    string
	DisassembleQty int
	Refresh        bool
	Verbose        bool
	Schema         bool
	Help           bool
}

// ReconcileCommand loads one store and prints its kit inventory report
type ReconcileCommand struct {
	config  Config
	runtime *Runtime
}

// NewReconcileCommand creates a new reconcile command with the given configuration
func NewReconcileCommand(config Config, runtime *Runtime) *ReconcileCommand {
	return &ReconcileCommand{
		config:  config,
		runtime: runtime,
	}
}

// Execute runs the reconcile command
func (c *ReconcileCommand) Execute(ctx context.Context) error {
	out := c.runtime.Out
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.Schema {
		schema, err := output.Schema()
		if err != nil {
			return fmt.Errorf("failed to build report schema: %w", err)
		}
		_, err = fmt.Fprintln(out, string(schema))
		return err
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	svc, cleanup, err := c.runtime.newService(ctx, serviceOptions{
		storeID:     c.config.StoreID,
		scenarioDir: c.config.ScenarioDir,
		windowDays:  c.config.WindowDays,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	if c.config.Refresh {
		if err := svc.ClearVelocityCache(ctx, ""); err != nil {
			return fmt.Errorf("failed to clear velocity cache: %w", err)
		}
	}

	if _, err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to load reconciliation data: %w", err)
	}

	scope := inventory.AllActiveKits()
	if c.config.KitSKU != "" {
		scope = inventory.SingleKit(entities.SKU(c.config.KitSKU))
	}

	report, err := svc.Report(scope)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if c.config.KitSKU != "" && len(report.Kits) == 0 {
		c.runtime.Logger.Warn("kit not found", zap.String("kit_sku", c.config.KitSKU))
	}

	if c.config.Disassemble != "" {
		gains, err := svc.SimulateDisassembly(entities.SKU(c.config.Disassemble), entities.Quantity(c.config.DisassembleQty))
		if err != nil {
			return fmt.Errorf("failed to simulate disassembly: %w", err)
		}
		report.Disassembly = gains
	}

	if c.config.Verbose {
		status := svc.SystemStatus(ctx)
		c.runtime.Logger.Info("system status",
			zap.Bool("storefront_online", status.StorefrontOnline),
			zap.Bool("catalog_online", status.CatalogOnline),
			zap.Int("components", status.ComponentCount),
			zap.Int("kits", status.KitCount),
			zap.Int("rules", status.RuleCount),
			zap.Bool("consistent", status.Consistent),
			zap.Int("missing_components", len(status.MissingComponents)),
			zap.Int("orphaned_rules", len(status.OrphanedRules)))
	}

	err = output.Generate(out, report, output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	})
	if err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

// validateInputs validates the command configuration
func (c *ReconcileCommand) validateInputs() error {
	switch c.config.Format {
	case "", output.FormatText, output.FormatJSON, output.FormatCSV:
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	if c.config.WindowDays < 0 {
		return fmt.Errorf("window must be at least one day, got %d", c.config.WindowDays)
	}
	if c.config.Disassemble != "" && c.config.DisassembleQty < 1 {
		return fmt.Errorf("disassembly quantity must be positive, got %d", c.config.DisassembleQty)
	}
	return nil
}

// showHelp displays the help message
func (c *ReconcileCommand) showHelp() {
	fmt.Fprint(c.runtime.Out, `kitinv - kit inventory reconciliation

USAGE:
    kitinv [reconcile] [options]     # Reconcile a store and print the report
    kitinv stores                    # List configured stores
    kitinv clear-cache -store <id>   # Drop the cached sales velocity
    kitinv generate -output <dir>    # Generate a synthetic CSV scenario
    kitinv session [options]         # Interactive what-if session

OPTIONS:
    -store <id>         Store to reconcile (default: mexico)
    -kit <sku>          Only compute this kit, even if inactive
    -scenario <dir>     Read CSV exports instead of Shopify and Google Sheets
    -days <n>           Sales velocity window in days (default: VELOCITY_WINDOW_DAYS or 30)
    -format <fmt>       Output format: text, json, csv (default: text)
    -output <dir>       Write json/csv results to this directory
    -disassemble <sku>  Also show components recovered by taking kits apart
    -qty <n>            Number of kits to disassemble (default: 1)
    -refresh            Ignore the cached sales velocity
    -schema             Print the JSON schema of the json report and exit
    -verbose            Log connection status and timings
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── kit_master.csv          # Kit SKU, Kit Name, ..., Active/Inactive Status
    ├── component_mapping.csv   # Kit SKU, Component SKU, Quantity per Kit, ...
    ├── business_rules.csv      # Component SKU, Minimum Buffer Stock, ...
    ├── product_costs.csv       # SKU, Unit Cost, Manual Override (Y/N) (optional)
    ├── components.csv          # sku,name,current_stock,reserved_stock,unit_cost
    └── orders.csv              # order_id,created_at,sku,quantity (optional)

EXAMPLES:
    kitinv -store usa
    kitinv -store mexico -kit KIT-A -format json
    kitinv -scenario testdata/scenario -days 14 -format csv -output results/
`)
}
