package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un lote de producción.
// pending/in_progress pueden pasar a completed o cancelled;
// completed y cancelled son terminales.
const (
	BatchPending    = "pending"
	BatchInProgress = "in_progress"
	BatchCompleted  = "completed"
	BatchCancelled  = "cancelled"
)

// ProductionBatch representa un lote de producción de un producto terminado.
// MaterialCostTotal y UnitCost se calculan al completar el lote; CompletedAt
// queda vacío mientras el lote no llegue a completed.
type ProductionBatch struct {
	ID              string
	BatchCode       string          // único, p.ej. LP000001
	ProductID       string
	WarehouseID     string
	ProductionDate  time.Time
	PlannedQuantity decimal.Decimal // cantidad de producto a obtener
	UnitID          string
	Status          string
	ManagerID       string

	MaterialCostTotal decimal.Decimal // suma de costos de línea, al completar
	UnitCost          decimal.Decimal // MaterialCostTotal / PlannedQuantity, 4 decimales
	CompletedAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanTransition indica si el lote admite pasar al estado destino.
func (b *ProductionBatch) CanTransition(to string) bool {
	switch b.Status {
	case BatchPending:
		return to == BatchInProgress || to == BatchCompleted || to == BatchCancelled
	case BatchInProgress:
		return to == BatchCompleted || to == BatchCancelled
	}
	return false // completed y cancelled son terminales
}
