package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialReception registra la llegada de materia prima de un proveedor.
// Crear una recepción dispara, en la misma transacción, una ENTRADA/COMPRA
// en el Kardex por la cantidad y costo recibidos.
type MaterialReception struct {
	ID            string
	RawMaterialID string
	SupplierID    string
	WarehouseID   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	InvoiceNumber string
	Lot           string
	Notes         string
	ReceivedBy    string
	ReceivedAt    time.Time
	CreatedAt     time.Time
}
