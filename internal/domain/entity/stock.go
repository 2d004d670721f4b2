package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock es el snapshot de cantidad actual de un ítem en un almacén.
// Es una tabla materializada que se refresca en cada movimiento del Kardex
// para que las consultas puntuales no repasen el historial.
type Stock struct {
	ItemType    string // kardex.ItemMateriaPrima | kardex.ItemProducto
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
