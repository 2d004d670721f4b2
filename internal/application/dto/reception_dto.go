package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateReceptionRequest entrada para registrar una recepción de materia prima.
type CreateReceptionRequest struct {
	RawMaterialID string          `json:"raw_material_id" validate:"required"`
	SupplierID    string          `json:"supplier_id" validate:"required"`
	WarehouseID   string          `json:"warehouse_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Lot           string          `json:"lot,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ReceivedAt    time.Time       `json:"received_at,omitempty"`
}

// ReceptionResponse salida de una recepción.
type ReceptionResponse struct {
	ID            string          `json:"id"`
	RawMaterialID string          `json:"raw_material_id"`
	SupplierID    string          `json:"supplier_id"`
	WarehouseID   string          `json:"warehouse_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	Lot           string          `json:"lot,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	ReceivedBy    string          `json:"received_by,omitempty"`
	ReceivedAt    time.Time       `json:"received_at"`
}

// ReceptionListResponse listado paginado de recepciones.
type ReceptionListResponse struct {
	Items []ReceptionResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
