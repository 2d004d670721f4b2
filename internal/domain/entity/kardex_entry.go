package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del Kardex.
const (
	MovementEntrada = "ENTRADA"
	MovementSalida  = "SALIDA"
)

// Motivos de movimiento del Kardex.
const (
	ReasonCompra     = "COMPRA"
	ReasonProduccion = "PRODUCCION"
	ReasonVenta      = "VENTA"
	ReasonAjuste     = "AJUSTE"
	ReasonDevolucion = "DEVOLUCION"
)

// ValidReason indica si el motivo es uno de los aceptados por el Kardex.
func ValidReason(reason string) bool {
	switch reason {
	case ReasonCompra, ReasonProduccion, ReasonVenta, ReasonAjuste, ReasonDevolucion:
		return true
	}
	return false
}

// KardexEntry es un registro inmutable del Kardex: un movimiento de entrada o
// salida de un ítem (materia prima o producto) en un almacén, junto con el
// saldo resultante DESPUÉS del movimiento. Una vez creado nunca se modifica
// ni se elimina; el orden dentro de una clave (almacén, ítem) es
// (Fecha, Seq) con Seq como desempate de inserción.
type KardexEntry struct {
	ID          string
	Seq         int64  // secuencia de inserción asignada por la BD
	Fecha       time.Time
	ItemType    string // kardex.ItemMateriaPrima | kardex.ItemProducto
	ItemID      string
	WarehouseID string

	MovementType string // ENTRADA | SALIDA
	Reason       string // COMPRA, PRODUCCION, VENTA, AJUSTE, DEVOLUCION
	Quantity     decimal.Decimal
	UnitCost     decimal.Decimal // costo del movimiento (4 decimales)
	TotalCost    decimal.Decimal // Quantity * UnitCost, 2 decimales half-up

	// Saldo después de este movimiento (snapshot que evita reagregar historial).
	BalanceQuantity  decimal.Decimal
	BalanceTotalCost decimal.Decimal
	BalanceAvgCost   decimal.Decimal

	ReferenceID string
	Notes       string
	RecordedBy  string
	CreatedAt   time.Time
}
