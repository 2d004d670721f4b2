package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BatchMaterial es una línea de consumo de materia prima dentro de un lote.
// (BatchID, RawMaterialID) es único; las líneas se eliminan en cascada con el lote.
type BatchMaterial struct {
	ID            string
	BatchID       string
	RawMaterialID string
	UsedQuantity  decimal.Decimal
	UnitID        string
	UnitCost      decimal.Decimal // costo promedio del material al momento de asignarlo
	LineCost      decimal.Decimal // UsedQuantity * UnitCost, 2 decimales
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
