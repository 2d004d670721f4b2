package kardex

import (
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// Precisión monetaria: saldos y costos de movimiento a 2 decimales,
// costos unitarios/promedio a 4. Redondeo half-up (Round de shopspring
// redondea alejándose de cero, equivalente para cantidades positivas).
const (
	totalPlaces = 2
	costPlaces  = 4
)

// Balance es el saldo de un ítem en un almacén: cantidad, valor total y
// costo promedio ponderado. Cada asiento del Kardex guarda el Balance
// resultante después de aplicarle el movimiento.
type Balance struct {
	Quantity  decimal.Decimal
	TotalCost decimal.Decimal
	AvgCost   decimal.Decimal
}

// ZeroBalance es el saldo centinela cuando no existe historial previo.
func ZeroBalance() Balance {
	return Balance{Quantity: decimal.Zero, TotalCost: decimal.Zero, AvgCost: decimal.Zero}
}

// IsZero indica saldo sin existencias ni valor.
func (b Balance) IsZero() bool {
	return b.Quantity.IsZero() && b.TotalCost.IsZero() && b.AvgCost.IsZero()
}

// Movement es la porción del movimiento que afecta el saldo.
type Movement struct {
	Type     string // entity.MovementEntrada | entity.MovementSalida
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// Calculate aplica un movimiento al saldo anterior y devuelve el nuevo saldo.
// Función pura, sin I/O. Reglas de costo promedio ponderado:
//
//   - ENTRADA: suma cantidad y costo; el promedio se recalcula como
//     saldo_valor / saldo_cantidad (4 decimales, half-up).
//   - SALIDA: se valora al costo promedio vigente, NO al costo que traiga el
//     llamador; el promedio no cambia. Si el saldo anterior es cero, el costo
//     del llamador se usa como valor de arranque.
//   - Si una SALIDA deja la cantidad negativa, el saldo completo se ajusta a
//     (0, 0, 0). El faltante se descarta en silencio; es política heredada
//     del sistema contable y debe preservarse tal cual.
func Calculate(prior Balance, mov Movement) (Balance, error) {
	switch mov.Type {
	case entity.MovementEntrada:
		newQty := prior.Quantity.Add(mov.Quantity)
		movCost := MovementTotal(mov.Quantity, mov.UnitCost)
		newTotal := prior.TotalCost.Add(movCost)
		newAvg := decimal.Zero
		if newQty.GreaterThan(decimal.Zero) {
			newAvg = newTotal.Div(newQty).Round(costPlaces)
		}
		return Balance{Quantity: newQty, TotalCost: newTotal, AvgCost: newAvg}, nil

	case entity.MovementSalida:
		avg := prior.AvgCost
		if !prior.Quantity.GreaterThan(decimal.Zero) {
			avg = mov.UnitCost // arranque: sin existencias previas
		}
		movCost := MovementTotal(mov.Quantity, avg)
		newQty := prior.Quantity.Sub(mov.Quantity)
		newTotal := prior.TotalCost.Sub(movCost)
		if newQty.LessThan(decimal.Zero) {
			return ZeroBalance(), nil
		}
		return Balance{Quantity: newQty, TotalCost: newTotal, AvgCost: avg}, nil
	}
	return Balance{}, domain.ErrInvalidMovement
}

// MovementTotal devuelve cantidad * costo unitario redondeado a 2 decimales
// half-up; es el costo_total que queda registrado en el asiento.
func MovementTotal(quantity, unitCost decimal.Decimal) decimal.Decimal {
	return quantity.Mul(unitCost).Round(totalPlaces)
}
