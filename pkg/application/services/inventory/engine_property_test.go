package inventory

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	testhelpers "github.com/vsinha/kitinv/pkg/application/services/testing"
	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// singleKitSnapshot builds one active kit whose i-th line needs qty[i] units
// of a component holding stock[i] units behind a buffer of buffer[i]
func singleKitSnapshot(stock, qty, buffer []int64) *entities.Snapshot {
	n := len(stock)
	if len(qty) < n {
		n = len(qty)
	}
	if len(buffer) < n {
		n = len(buffer)
	}

	components := make([]entities.Component, 0, n)
	lines := make([]entities.KitComponent, 0, n)
	rules := make(map[entities.SKU]entities.BusinessRule, n)
	for i := 0; i < n; i++ {
		sku := entities.SKU(fmt.Sprintf("C-%02d", i))
		components = append(components, testhelpers.Stock(sku, entities.Quantity(stock[i])))
		lines = append(lines, testhelpers.Line("KIT-P", sku, "", qty[i]))
		rules[sku] = testhelpers.Buffer(sku, entities.Quantity(buffer[i]))
	}

	return entities.NewSnapshot(entities.SnapshotData{
		Components: components,
		Kits:       []entities.Kit{{SKU: "KIT-P", Active: true, Components: lines}},
		Rules:      rules,
	})
}

func TestEngine_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)
	engine := newTestEngine()

	stockGen := gen.SliceOfN(6, gen.Int64Range(0, 5000))
	qtyGen := gen.SliceOfN(6, gen.Int64Range(1, 25))
	bufferGen := gen.SliceOfN(6, gen.Int64Range(0, 200))

	properties.Property("status always matches the buildable quantity", prop.ForAll(
		func(stock, qty, buffer []int64) bool {
			r := engine.ComputeEffectiveInventory(singleKitSnapshot(stock, qty, buffer), AllActiveKits())[0]
			return r.Status == entities.StatusFor(r.MaxBuildable) && r.MaxBuildable >= 0
		},
		stockGen, qtyGen, bufferGen,
	))

	properties.Property("no component can support fewer kits than the result", prop.ForAll(
		func(stock, qty, buffer []int64) bool {
			r := engine.ComputeEffectiveInventory(singleKitSnapshot(stock, qty, buffer), AllActiveKits())[0]
			for i := range stock {
				adjusted := stock[i] - buffer[i]
				if adjusted < 0 {
					adjusted = 0
				}
				if int64(r.MaxBuildable)*qty[i] > adjusted {
					return false
				}
			}
			return true
		},
		stockGen, qtyGen, bufferGen,
	))

	properties.Property("the bottleneck component supports exactly the result", prop.ForAll(
		func(stock, qty, buffer []int64) bool {
			r := engine.ComputeEffectiveInventory(singleKitSnapshot(stock, qty, buffer), AllActiveKits())[0]
			for i := range stock {
				if r.Bottleneck != fmt.Sprintf("C-%02d", i) {
					continue
				}
				adjusted := stock[i] - buffer[i]
				if adjusted < 0 {
					adjusted = 0
				}
				return adjusted/qty[i] == int64(r.MaxBuildable)
			}
			return false
		},
		stockGen, qtyGen, bufferGen,
	))

	properties.Property("stocking every line for k kits allows at least k", prop.ForAll(
		func(k int64, qty []int64) bool {
			stock := make([]int64, len(qty))
			buffer := make([]int64, len(qty))
			for i, q := range qty {
				stock[i] = q * k
			}
			r := engine.ComputeEffectiveInventory(singleKitSnapshot(stock, qty, buffer), AllActiveKits())[0]
			return int64(r.MaxBuildable) >= k
		},
		gen.Int64Range(0, 500), qtyGen,
	))

	properties.Property("adding stock never lowers the result", prop.ForAll(
		func(stock, qty, buffer []int64, extra int64) bool {
			before := engine.ComputeEffectiveInventory(singleKitSnapshot(stock, qty, buffer), AllActiveKits())[0]
			more := append([]int64(nil), stock...)
			more[0] += extra
			after := engine.ComputeEffectiveInventory(singleKitSnapshot(more, qty, buffer), AllActiveKits())[0]
			return after.MaxBuildable >= before.MaxBuildable
		},
		stockGen, qtyGen, bufferGen, gen.Int64Range(0, 1000),
	))

	properties.TestingRun(t)
}
