package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de cliente.
const (
	OrderPending    = "pending"
	OrderConfirmed  = "confirmed"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// SalesOrder representa una orden de venta a un cliente.
// ItemsSubtotal/TaxAmount/Total son agregados derivados: se recalculan cada vez
// que cambian las líneas, nunca se editan a mano.
type SalesOrder struct {
	ID          string
	OrderCode   string          // único
	ClientID    string
	WarehouseID string
	OrderDate   time.Time
	Status      string
	TaxRate     decimal.Decimal // % aplicado sobre el subtotal

	ItemsSubtotal decimal.Decimal
	TaxAmount     decimal.Decimal // round(subtotal * TaxRate / 100, 2)
	Total         decimal.Decimal

	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OrderItem es una línea de producto dentro de una orden de venta.
type OrderItem struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal // Quantity * UnitPrice, 2 decimales
	CreatedAt time.Time
	UpdatedAt time.Time
}
