package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/kitinv/pkg/application/dto"
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

func sampleReport() *dto.Report {
	days := 20.0
	return &dto.Report{
		SnapshotID: "0b8e5c1e-0000-4000-8000-000000000000",
		StoreID:    "mexico",
		LoadedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		WindowDays: 30,
		Kits: []entities.EffectiveInventory{
			{KitSKU: "KIT-A", KitName: "Starter Kit", MaxBuildable: 3, Bottleneck: "SCL-02", Status: entities.StatusLow},
			{KitSKU: "KIT-B", KitName: "Empty", Bottleneck: entities.BottleneckNoComponents, Status: entities.StatusCritical},
		},
		Summary: dto.StatusSummary{Total: 2, Low: 1, Critical: 1},
		Forecast: []entities.ForecastMetrics{
			{SKU: "BASE", Name: "Base", AvailableStock: 100, UnitsSold: 150, DailyVelocity: 5, DaysOfStock: &days,
				RecommendedBuffer: 35, InventoryValue: decimal.RequireFromString("325")},
			{SKU: "LID", Name: "Lid", AvailableStock: 40},
		},
		KitCosts: map[entities.SKU]decimal.Decimal{"KIT-A": decimal.RequireFromString("3.40")},
		Issues:   []string{"Business rule exists for non-existent component: ORPHAN"},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, sampleReport(), Config{Format: FormatText}))

	out := buf.String()
	assert.Contains(t, out, "Kits: 2  OK: 0  LOW: 1  CRITICAL: 1")
	assert.Contains(t, out, "KIT-A")
	assert.Contains(t, out, "LOW")
	assert.Contains(t, out, "No components defined")
	assert.Contains(t, out, "325.00")
	assert.Contains(t, out, "20.0")
	assert.Contains(t, out, "ORPHAN")
}

func TestGenerate_TextWithoutIssues(t *testing.T) {
	report := sampleReport()
	report.Issues = []string{}
	report.Disassembly = map[entities.SKU]decimal.Decimal{"LID": decimal.NewFromInt(4)}
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, report, Config{}))

	assert.Contains(t, buf.String(), "No data issues")
	assert.Contains(t, buf.String(), "+4")
}

func TestGenerate_JSONToWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, sampleReport(), Config{Format: FormatJSON}))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	kits := decoded["kits"].([]interface{})
	first := kits[0].(map[string]interface{})
	assert.Equal(t, "LOW", first["status"])
	assert.Equal(t, float64(3), first["max_buildable"])

	forecast := decoded["forecast"].([]interface{})
	assert.Nil(t, forecast[1].(map[string]interface{})["days_of_stock"], "no sales renders as null")
	assert.Equal(t, "3.4", decoded["kit_costs"].(map[string]interface{})["KIT-A"])
}

func TestGenerate_JSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, sampleReport(), Config{Format: FormatJSON, OutputDir: dir, Verbose: true}))

	data, err := os.ReadFile(filepath.Join(dir, "kit_inventory.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"store_id": "mexico"`)
	assert.Contains(t, buf.String(), "kit_inventory.json")
}

func TestGenerate_CSVToWriter(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, sampleReport(), Config{Format: FormatCSV}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"KIT-A", "Starter Kit", "3", "LOW", "SCL-02"}, rows[1])
}

func TestGenerate_CSVToDirectory(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	require.NoError(t, Generate(&buf, sampleReport(), Config{Format: FormatCSV, OutputDir: dir}))

	f, err := os.Open(filepath.Join(dir, "forecast.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"BASE", "Base", "100", "150", "5.0000", "20.00", "35", "325.00", "false"}, rows[1])
	assert.Equal(t, "", rows[2][5])

	_, err = os.Stat(filepath.Join(dir, "effective_inventory.csv"))
	assert.NoError(t, err)
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	err := Generate(&bytes.Buffer{}, sampleReport(), Config{Format: "xml"})
	assert.EqualError(t, err, "unsupported output format: xml")
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var schema map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &schema))
	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props, "kits")
	assert.Contains(t, props, "forecast")

	kits := props["kits"].(map[string]interface{})
	item := kits["items"].(map[string]interface{})
	status := item["properties"].(map[string]interface{})["status"].(map[string]interface{})
	assert.Equal(t, "string", status["type"])
	assert.ElementsMatch(t, []interface{}{"OK", "LOW", "CRITICAL"}, status["enum"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}
