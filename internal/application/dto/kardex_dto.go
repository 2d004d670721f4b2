package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/kardex/movements.
type RegisterMovementRequest struct {
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	ItemType    string          `json:"item_type" validate:"required,oneof=MATERIA_PRIMA PRODUCTO"`
	ItemID      string          `json:"item_id" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=ENTRADA SALIDA"`
	Reason      string          `json:"reason" validate:"required,oneof=COMPRA PRODUCCION VENTA AJUSTE DEVOLUCION"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	ReferenceID string          `json:"reference_id,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// KardexEntryResponse asiento del Kardex en respuestas.
type KardexEntryResponse struct {
	ID          string    `json:"id"`
	Seq         int64     `json:"seq"`
	Fecha       time.Time `json:"fecha"`
	ItemType    string    `json:"item_type"`
	ItemID      string    `json:"item_id"`
	WarehouseID string    `json:"warehouse_id"`

	MovementType string          `json:"movement_type"`
	Reason       string          `json:"reason"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`

	BalanceQuantity  decimal.Decimal `json:"balance_quantity"`
	BalanceTotalCost decimal.Decimal `json:"balance_total_cost"`
	BalanceAvgCost   decimal.Decimal `json:"balance_avg_cost"`

	ReferenceID string `json:"reference_id,omitempty"`
	Notes       string `json:"notes,omitempty"`
	RecordedBy  string `json:"recorded_by,omitempty"`
}

// BalanceResponse saldo actual de (almacén, ítem).
type BalanceResponse struct {
	WarehouseID string          `json:"warehouse_id"`
	ItemType    string          `json:"item_type"`
	ItemID      string          `json:"item_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	AvgCost     decimal.Decimal `json:"avg_cost"`
}

// KardexHistoryResponse historial paginado de movimientos.
type KardexHistoryResponse struct {
	Items []KardexEntryResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}

// StockResponse snapshot de stock de un ítem en un almacén.
type StockResponse struct {
	ItemType    string          `json:"item_type"`
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
