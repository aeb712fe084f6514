package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/kitinv/pkg/domain/entities"
)

// SimulateDisassembly returns the component units recovered by breaking down
// quantity kits. An unknown kit recovers nothing.
func (e *Engine) SimulateDisassembly(snapshot *entities.Snapshot, kitSKU entities.SKU, quantity entities.Quantity) (map[entities.SKU]decimal.Decimal, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("disassembly quantity cannot be negative, got %d", quantity)
	}

	gains := make(map[entities.SKU]decimal.Decimal)
	kit, ok := snapshot.Kit(kitSKU)
	if !ok {
		return gains, nil
	}

	kits := decimal.NewFromInt(int64(quantity))
	for _, line := range kit.Components {
		gained := line.QuantityPerKit.Mul(kits)
		gains[line.ComponentSKU] = gains[line.ComponentSKU].Add(gained)
	}
	return gains, nil
}
