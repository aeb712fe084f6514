package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/application/services/inventory"
	"github.com/vsinha/kitinv/pkg/application/services/reconcile"
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// SessionConfig holds configuration for the interactive session command
type SessionConfig struct {
	StoreID     string
	ScenarioDir string
	WindowDays  int
	Help        bool
}

// errQuit ends the session loop
var errQuit = errors.New("quit")

// SessionCommand handles an interactive session over one loaded snapshot,
// answering what-if questions without reloading the catalogs
type SessionCommand struct {
	config  SessionConfig
	runtime *Runtime
	service *reconcile.Service
	scanner *bufio.Scanner
	out     io.Writer
}

// NewSessionCommand creates a new session command reading commands from in
func NewSessionCommand(config SessionConfig, runtime *Runtime, in io.Reader) *SessionCommand {
	return &SessionCommand{
		config:  config,
		runtime: runtime,
		scanner: bufio.NewScanner(in),
		out:     runtime.Out,
	}
}

// Execute runs the session command
func (c *SessionCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.printHelp()
		return nil
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
	c.service = svc

	if _, err := svc.Load(ctx); err != nil {
		return fmt.Errorf("failed to load reconciliation data: %w", err)
	}

	return c.runInteractiveSession(ctx)
}

func (c *SessionCommand) runInteractiveSession(ctx context.Context) error {
	fmt.Fprintln(c.out, "=== Kit Inventory Session ===")
	fmt.Fprintln(c.out, "Type 'help' for available commands")
	fmt.Fprintln(c.out)

	for {
		fmt.Fprint(c.out, "kitinv> ")
		if !c.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(c.scanner.Text())
		if line == "" {
			continue
		}

		err := c.processCommand(ctx, line)
		if errors.Is(err, errQuit) {
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		}
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		fmt.Fprintln(c.out)
	}

	return c.scanner.Err()
}

func (c *SessionCommand) processCommand(ctx context.Context, line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	switch command {
	case "help", "h":
		c.printInteractiveHelp()
	case "kits", "kit":
		return c.handleKits(args)
	case "forecast":
		return c.handleForecast(args)
	case "disassemble":
		return c.handleDisassemble(args)
	case "costs":
		return c.handleCosts()
	case "issues":
		return c.handleIssues()
	case "status":
		return c.handleStatus(ctx)
	case "reload":
		return c.handleReload(ctx, args)
	case "quit", "q", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", command)
	}

	return nil
}

func (c *SessionCommand) handleKits(args []string) error {
	scope := inventory.AllActiveKits()
	if len(args) > 0 {
		scope = inventory.SingleKit(entities.SKU(args[0]))
	}

	results, err := c.service.ComputeEffectiveInventory(scope)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Fprintln(c.out, "No matching kits")
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(c.out, "%-15s %-8s %6d  limited by %s\n", r.KitSKU, r.Status, r.MaxBuildable, r.Bottleneck)
	}
	return nil
}

func (c *SessionCommand) handleForecast(args []string) error {
	metrics, err := c.service.GetForecastMetrics()
	if err != nil {
		return err
	}

	skus := make([]entities.SKU, 0, len(metrics))
	if len(args) > 0 {
		sku := entities.SKU(args[0])
		if _, ok := metrics[sku]; !ok {
			return fmt.Errorf("component not found: %s", sku)
		}
		skus = append(skus, sku)
	} else {
		for sku := range metrics {
			skus = append(skus, sku)
		}
		sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	}

	for _, sku := range skus {
		m := metrics[sku]
		days := "no sales"
		if m.DaysOfStock != nil {
			days = fmt.Sprintf("%.1f days", *m.DaysOfStock)
		}
		reorder := ""
		if m.ReorderRecommended {
			reorder = "  REORDER"
		}
		fmt.Fprintf(c.out, "%-15s available %-6d %.2f/day  %-10s buffer %d%s\n",
			sku, m.AvailableStock, m.DailyVelocity, days, m.RecommendedBuffer, reorder)
	}
	return nil
}

func (c *SessionCommand) handleDisassemble(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: disassemble <kit-sku> <quantity>")
	}
	qty, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity: %s", args[1])
	}

	gains, err := c.service.SimulateDisassembly(entities.SKU(args[0]), entities.Quantity(qty))
	if err != nil {
		return err
	}
	if len(gains) == 0 {
		fmt.Fprintf(c.out, "Kit %s has no components to recover\n", args[0])
		return nil
	}

	for _, sku := range sortedSKUs(gains) {
		fmt.Fprintf(c.out, "  %-15s +%s\n", sku, gains[sku])
	}
	return nil
}

func (c *SessionCommand) handleCosts() error {
	costs, err := c.service.KitCosts()
	if err != nil {
		return err
	}
	for _, sku := range sortedSKUs(costs) {
		fmt.Fprintf(c.out, "  %-15s %s\n", sku, costs[sku].StringFixed(2))
	}
	return nil
}

func (c *SessionCommand) handleIssues() error {
	issues, err := c.service.ValidateConsistency()
	if err != nil {
		return err
	}
	if len(issues) == 0 {
		fmt.Fprintln(c.out, "No data issues")
		return nil
	}
	for _, issue := range issues {
		fmt.Fprintf(c.out, "  - %s\n", issue)
	}
	return nil
}

func (c *SessionCommand) handleStatus(ctx context.Context) error {
	status := c.service.SystemStatus(ctx)

	fmt.Fprintf(c.out, "=== System Status ===\n")
	fmt.Fprintf(c.out, "Store: %s\n", status.StoreID)
	fmt.Fprintf(c.out, "Storefront online: %t\n", status.StorefrontOnline)
	fmt.Fprintf(c.out, "Catalog online: %t\n", status.CatalogOnline)
	fmt.Fprintf(c.out, "Loaded at: %s\n", status.LoadedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(c.out, "Components: %d  Kits: %d  Rules: %d  Issues: %d\n",
		status.ComponentCount, status.KitCount, status.RuleCount, len(status.Issues))
	fmt.Fprintf(c.out, "Missing components: %d  Orphaned rules: %d\n",
		len(status.MissingComponents), len(status.OrphanedRules))
	for _, m := range status.MissingComponents {
		fmt.Fprintf(c.out, "  %-15s needs %s\n", m.KitSKU, m.ComponentSKU)
	}
	return nil
}

// handleReload loads the catalogs again; "reload refresh" also drops the
// cached sales velocity first
func (c *SessionCommand) handleReload(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "refresh" {
		if err := c.service.ClearVelocityCache(ctx, ""); err != nil {
			return fmt.Errorf("failed to clear velocity cache: %w", err)
		}
	}
	snapshot, err := c.service.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Reloaded snapshot %s\n", snapshot.ID)
	return nil
}

func sortedSKUs(m map[entities.SKU]decimal.Decimal) []entities.SKU {
	skus := make([]entities.SKU, 0, len(m))
	for sku := range m {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}

func (c *SessionCommand) printHelp() {
	fmt.Fprintln(c.out, `Interactive Session Command

USAGE:
    kitinv session [OPTIONS]

OPTIONS:
    -store <id>         Store to load (default: mexico)
    -scenario <DIR>     Path to scenario directory containing CSV files
    -days <n>           Sales velocity window in days
    -help               Show this help message

DESCRIPTION:
    Loads one snapshot and starts an interactive session where you can
    inspect kits, forecasts and costs, and simulate disassembly.`)
}

func (c *SessionCommand) printInteractiveHelp() {
	fmt.Fprintln(c.out, `Available commands:

  kits [kit-sku]
      Show buildable quantities for every active kit, or one kit
      Example: kits KIT-A

  forecast [component-sku]
      Show sales velocity and restocking metrics
      Example: forecast SCL-01

  disassemble <kit-sku> <quantity>
      Show the components recovered by taking kits apart
      Example: disassemble KIT-A 3

  costs
      Show kit costs rolled up from components

  issues
      List catalog consistency issues

  status
      Show connectivity and catalog sizes

  reload [refresh]
      Load the catalogs again, optionally ignoring cached sales velocity

  help, h
      Show this help message

  quit, q, exit
      Exit the session`)
}
