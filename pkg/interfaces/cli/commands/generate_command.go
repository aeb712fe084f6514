package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	kitcsv "github.com/vsinha/kitinv/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/kitinv/pkg/infrastructure/records"
)

// GenerateConfig holds configuration for scenario generation
type GenerateConfig struct {
	Kits       int     // Number of kits to generate
	Components int     // Number of stocked components
	Orders     int     // Number of orders in the history
	Days       int     // Orders are spread over this many days before Now
	Stock      float64 // Stock multiplier (e.g., 0.5 = scarce, 4.0 = plentiful)
	OutputDir  string  // Output directory for generated files
	Seed       int64   // Random seed for reproducible generation
	Now        time.Time
	Help       bool // Show help
	Verbose    bool // Verbose output
}

// GenerateCommand writes a synthetic scenario directory readable by -scenario
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig, out io.Writer) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.Now.IsZero() {
		config.Now = time.Now().UTC()
	}
	if config.Days <= 0 {
		config.Days = 30
	}
	if config.Stock <= 0 {
		config.Stock = 1
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    out,
	}
}

// generatedKit is a kit and its BOM lines before they are written out
type generatedKit struct {
	sku    string
	name   string
	active bool
	lines  []generatedLine
}

type generatedLine struct {
	component int
	quantity  string
}

var componentTypes = []string{"Scale", "Scoop", "Jar", "Lid", "Brush", "Mold", "Pouch", "Label", "Strap", "Tray"}

// Execute runs the generate command
func (cmd *GenerateCommand) Execute(ctx context.Context) error {
	if cmd.config.Help {
		cmd.printHelp()
		return nil
	}
	if err := cmd.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "🔧 Generating scenario with %d kits, %d components, %d orders over %d days, %.1fx stock\n",
			cmd.config.Kits, cmd.config.Components, cmd.config.Orders, cmd.config.Days, cmd.config.Stock)
		fmt.Fprintf(cmd.out, "📁 Output directory: %s\n", cmd.config.OutputDir)
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kits := cmd.generateKits()

	steps := []struct {
		file  string
		write func(*csv.Writer) error
	}{
		{kitcsv.ComponentsFile, cmd.writeComponents},
		{kitcsv.KitMasterFile, func(w *csv.Writer) error { return cmd.writeKitMaster(w, kits) }},
		{kitcsv.ComponentMappingFile, func(w *csv.Writer) error { return cmd.writeComponentMapping(w, kits) }},
		{kitcsv.BusinessRulesFile, cmd.writeBusinessRules},
		{kitcsv.ProductCostsFile, func(w *csv.Writer) error { return cmd.writeProductCosts(w, kits) }},
		{kitcsv.OrdersFile, func(w *csv.Writer) error { return cmd.writeOrders(w, kits) }},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cmd.config.Verbose {
			fmt.Fprintf(cmd.out, "📦 Generating %s...\n", step.file)
		}
		if err := writeCSVFile(filepath.Join(cmd.config.OutputDir, step.file), step.write); err != nil {
			return fmt.Errorf("failed to generate %s: %w", step.file, err)
		}
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "✅ Scenario generated successfully in %s\n", cmd.config.OutputDir)
	}
	return nil
}

func (cmd *GenerateCommand) validate() error {
	if cmd.config.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if cmd.config.Kits < 1 || cmd.config.Components < 1 {
		return fmt.Errorf("at least one kit and one component are required")
	}
	if cmd.config.Orders < 0 {
		return fmt.Errorf("order count cannot be negative, got %d", cmd.config.Orders)
	}
	return nil
}

func writeCSVFile(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		file.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func componentSKU(i int) string { return fmt.Sprintf("COMP_%03d", i+1) }

func componentName(i int) string {
	return fmt.Sprintf("%s %03d", componentTypes[i%len(componentTypes)], i+1)
}

// generateKits builds kits of one to five distinct components. Roughly one kit
// in ten is inactive and one line in eight uses a half unit.
func (cmd *GenerateCommand) generateKits() []generatedKit {
	kits := make([]generatedKit, cmd.config.Kits)
	for i := range kits {
		n := 1 + cmd.rand.Intn(min(5, cmd.config.Components))
		picked := cmd.rand.Perm(cmd.config.Components)[:n]

		kit := generatedKit{
			sku:    fmt.Sprintf("KIT_%03d", i+1),
			name:   fmt.Sprintf("%s Kit %03d", componentTypes[cmd.rand.Intn(len(componentTypes))], i+1),
			active: cmd.rand.Intn(10) != 0,
		}
		for _, c := range picked {
			qty := strconv.Itoa(1 + cmd.rand.Intn(3))
			if cmd.rand.Intn(8) == 0 {
				qty = "0.5"
			}
			kit.lines = append(kit.lines, generatedLine{component: c, quantity: qty})
		}
		kits[i] = kit
	}
	return kits
}

func (cmd *GenerateCommand) writeComponents(w *csv.Writer) error {
	if err := w.Write([]string{"sku", "name", "current_stock", "reserved_stock", "unit_cost"}); err != nil {
		return err
	}
	for i := 0; i < cmd.config.Components; i++ {
		stock := int(float64(cmd.rand.Intn(120)) * cmd.config.Stock)
		reserved := 0
		if stock > 0 && cmd.rand.Intn(4) == 0 {
			reserved = cmd.rand.Intn(stock/4 + 1)
		}
		if err := w.Write([]string{
			componentSKU(i),
			componentName(i),
			strconv.Itoa(stock),
			strconv.Itoa(reserved),
			cmd.price(50, 2500),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *GenerateCommand) writeKitMaster(w *csv.Writer, kits []generatedKit) error {
	if err := w.Write([]string{
		records.ColKitSKU, records.ColKitName, records.ColKitDescription, records.ColKitPrice,
		records.ColKitStatus, records.ColKitCreated, records.ColKitModified,
	}); err != nil {
		return err
	}
	created := cmd.config.Now.AddDate(-1, 0, 0)
	for _, kit := range kits {
		status := "Active"
		if !kit.active {
			status = "Inactive"
		}
		if err := w.Write([]string{
			kit.sku,
			kit.name,
			fmt.Sprintf("%d component bundle", len(kit.lines)),
			cmd.price(1500, 9900),
			status,
			created.AddDate(0, 0, cmd.rand.Intn(180)).Format("2006-01-02"),
			"",
		}); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *GenerateCommand) writeComponentMapping(w *csv.Writer, kits []generatedKit) error {
	if err := w.Write([]string{
		records.ColKitSKU, records.ColComponentSKU, records.ColComponentName,
		records.ColQuantityPerKit, records.ColComponentCost, records.ColCriticalYN,
	}); err != nil {
		return err
	}
	for _, kit := range kits {
		for i, line := range kit.lines {
			critical := "N"
			if i == 0 {
				critical = "Y"
			}
			if err := w.Write([]string{
				kit.sku,
				componentSKU(line.component),
				componentName(line.component),
				line.quantity,
				"",
				critical,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeBusinessRules configures about half of the components
func (cmd *GenerateCommand) writeBusinessRules(w *csv.Writer) error {
	if err := w.Write([]string{
		records.ColComponentSKU, records.ColMinimumBuffer, records.ColMaximumAssembly,
		records.ColLeadTime, records.ColAssemblyTime, records.ColPriorityTiers,
	}); err != nil {
		return err
	}
	priorities := []string{"High", "Medium", "Low"}
	for i := 0; i < cmd.config.Components; i++ {
		if cmd.rand.Intn(2) == 0 {
			continue
		}
		if err := w.Write([]string{
			componentSKU(i),
			strconv.Itoa(cmd.rand.Intn(11)),
			"1000",
			strconv.Itoa(3 + cmd.rand.Intn(19)),
			strconv.Itoa(5 + cmd.rand.Intn(26)),
			priorities[cmd.rand.Intn(len(priorities))],
		}); err != nil {
			return err
		}
	}
	return nil
}

// writeProductCosts gives roughly one kit in five a manual cost override
func (cmd *GenerateCommand) writeProductCosts(w *csv.Writer, kits []generatedKit) error {
	if err := w.Write([]string{records.ColSKU, records.ColUnitCost, records.ColManualOverrideYN}); err != nil {
		return err
	}
	for _, kit := range kits {
		if cmd.rand.Intn(5) != 0 {
			continue
		}
		if err := w.Write([]string{kit.sku, cmd.price(500, 5000), "Y"}); err != nil {
			return err
		}
	}
	return nil
}

// writeOrders spreads orders over the window, newest first. Lines name either a
// component or a kit, the way storefront orders do.
func (cmd *GenerateCommand) writeOrders(w *csv.Writer, kits []generatedKit) error {
	if err := w.Write([]string{"order_id", "created_at", "sku", "quantity"}); err != nil {
		return err
	}
	window := time.Duration(cmd.config.Days) * 24 * time.Hour
	step := window / time.Duration(cmd.config.Orders+1)
	for i := 0; i < cmd.config.Orders; i++ {
		id := strconv.Itoa(100000 + i)
		created := cmd.config.Now.Add(-step * time.Duration(i+1)).Format(time.RFC3339)
		lines := 1 + cmd.rand.Intn(3)
		for j := 0; j < lines; j++ {
			sku := componentSKU(cmd.rand.Intn(cmd.config.Components))
			if cmd.rand.Intn(3) == 0 {
				sku = kits[cmd.rand.Intn(len(kits))].sku
			}
			if err := w.Write([]string{id, created, sku, strconv.Itoa(1 + cmd.rand.Intn(3))}); err != nil {
				return err
			}
		}
	}
	return nil
}

// price returns a random amount between lo and hi cents formatted as dollars
func (cmd *GenerateCommand) price(lo, hi int) string {
	cents := lo + cmd.rand.Intn(hi-lo+1)
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// printHelp shows usage information
func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Kit Scenario Generator

USAGE:
    kitinv generate [OPTIONS]

OPTIONS:
    -kits <N>           Number of kits to generate (default: 10)
    -components <N>     Number of components to generate (default: 25)
    -orders <N>         Number of orders in the history (default: 200)
    -days <N>           Spread orders over this many days (default: 30)
    -stock <F>          Stock multiplier (e.g., 0.5 = scarce, 4.0 = plentiful)
    -output <DIR>       Output directory for generated files (required)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small scenario and reconcile it
    kitinv generate -output ./scenario -seed 42
    kitinv -scenario ./scenario

    # Generate a scarce catalog with a long order history
    kitinv generate -kits 50 -components 120 -orders 5000 -days 90 -stock 0.3 -output ./scarce`)
}
