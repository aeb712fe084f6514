package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/application/dto"
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Generate renders the report in the configured format. JSON and CSV go to
// files when an output directory is set, otherwise to w.
func Generate(w io.Writer, report *dto.Report, config Config) error {
	switch config.Format {
	case FormatText, "":
		return generateTextOutput(w, report)
	case FormatJSON:
		return generateJSONOutput(w, report, config)
	case FormatCSV:
		return generateCSVOutput(w, report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, report *dto.Report) error {
	fmt.Fprintf(w, "📊 Kit Inventory (%s, %d-day window)\n", report.StoreID, report.WindowDays)
	fmt.Fprintf(w, "==========================================\n\n")

	fmt.Fprintf(w, "Kits: %d  OK: %d  LOW: %d  CRITICAL: %d\n",
		report.Summary.Total, report.Summary.OK, report.Summary.Low, report.Summary.Critical)
	fmt.Fprintf(w, "Loaded: %s\n\n", report.LoadedAt.Format("2006-01-02 15:04:05"))

	if len(report.Kits) > 0 {
		fmt.Fprintf(w, "📦 Effective Inventory:\n")
		fmt.Fprintf(w, "%-15s %-25s %-10s %-10s %-25s\n",
			"Kit SKU", "Name", "Buildable", "Status", "Bottleneck")
		fmt.Fprintf(w, "%-15s %-25s %-10s %-10s %-25s\n",
			"---------------", "-------------------------", "----------", "----------", "-------------------------")

		for _, kit := range report.Kits {
			fmt.Fprintf(w, "%-15s %-25s %-10d %-10s %-25s\n",
				kit.KitSKU,
				truncate(kit.KitName, 25),
				kit.MaxBuildable,
				kit.Status,
				kit.Bottleneck)
		}
		fmt.Fprintln(w)
	}

	if len(report.Forecast) > 0 {
		fmt.Fprintf(w, "📈 Forecast:\n")
		fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %-10s %-8s %-12s %-7s\n",
			"SKU", "Available", "Sold", "Per Day", "Days Left", "Buffer", "Value", "Reorder")
		fmt.Fprintf(w, "%-15s %-10s %-8s %-10s %-10s %-8s %-12s %-7s\n",
			"---------------", "----------", "--------", "----------", "----------", "--------", "------------", "-------")

		for _, m := range report.Forecast {
			reorder := ""
			if m.ReorderRecommended {
				reorder = "yes"
			}
			fmt.Fprintf(w, "%-15s %-10d %-8d %-10.2f %-10s %-8d %-12s %-7s\n",
				m.SKU,
				m.AvailableStock,
				m.UnitsSold,
				m.DailyVelocity,
				formatDays(m.DaysOfStock),
				m.RecommendedBuffer,
				m.InventoryValue.StringFixed(2),
				reorder)
		}
		fmt.Fprintln(w)
	}

	if len(report.Disassembly) > 0 {
		fmt.Fprintf(w, "🔧 Disassembly Gains:\n")
		for _, sku := range sortedSKUs(report.Disassembly) {
			fmt.Fprintf(w, "  %-15s +%s\n", sku, report.Disassembly[sku])
		}
		fmt.Fprintln(w)
	}

	if len(report.Issues) > 0 {
		fmt.Fprintf(w, "⚠️  Data Issues:\n")
		for _, issue := range report.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "✅ No data issues\n")
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, report *dto.Report, config Config) error {
	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filename := filepath.Join(config.OutputDir, "kit_inventory.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes one CSV per view into the output directory, or the
// effective inventory table to w when no directory is set
func generateCSVOutput(w io.Writer, report *dto.Report, config Config) error {
	if config.OutputDir == "" {
		return writeInventoryCSV(w, report.Kits)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	inventoryFile := filepath.Join(config.OutputDir, "effective_inventory.csv")
	if err := writeFile(inventoryFile, func(f io.Writer) error { return writeInventoryCSV(f, report.Kits) }); err != nil {
		return fmt.Errorf("failed to write effective inventory CSV: %w", err)
	}

	forecastFile := filepath.Join(config.OutputDir, "forecast.csv")
	if err := writeFile(forecastFile, func(f io.Writer) error { return writeForecastCSV(f, report.Forecast) }); err != nil {
		return fmt.Errorf("failed to write forecast CSV: %w", err)
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to:\n")
		fmt.Fprintf(w, "  Effective Inventory: %s\n", inventoryFile)
		fmt.Fprintf(w, "  Forecast: %s\n", forecastFile)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeInventoryCSV(w io.Writer, kits []entities.EffectiveInventory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kit_sku", "kit_name", "max_buildable", "status", "bottleneck"}); err != nil {
		return err
	}
	for _, kit := range kits {
		if err := cw.Write([]string{
			string(kit.KitSKU),
			kit.KitName,
			strconv.FormatInt(int64(kit.MaxBuildable), 10),
			kit.Status.String(),
			kit.Bottleneck,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeForecastCSV(w io.Writer, metrics []entities.ForecastMetrics) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"sku", "name", "available_stock", "units_sold", "daily_velocity",
		"days_of_stock", "recommended_buffer", "inventory_value", "reorder_recommended",
	}); err != nil {
		return err
	}
	for _, m := range metrics {
		days := ""
		if m.DaysOfStock != nil {
			days = strconv.FormatFloat(*m.DaysOfStock, 'f', 2, 64)
		}
		if err := cw.Write([]string{
			string(m.SKU),
			m.Name,
			strconv.FormatInt(int64(m.AvailableStock), 10),
			strconv.FormatInt(int64(m.UnitsSold), 10),
			strconv.FormatFloat(m.DailyVelocity, 'f', 4, 64),
			days,
			strconv.FormatInt(int64(m.RecommendedBuffer), 10),
			m.InventoryValue.StringFixed(2),
			strconv.FormatBool(m.ReorderRecommended),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDays(days *float64) string {
	if days == nil {
		return "-"
	}
	return strconv.FormatFloat(*days, 'f', 1, 64)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sortedSKUs(m map[entities.SKU]decimal.Decimal) []entities.SKU {
	skus := make([]entities.SKU, 0, len(m))
	for sku := range m {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}
