package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBatchRequest entrada para crear un lote de producción.
type CreateBatchRequest struct {
	BatchCode       string          `json:"batch_code,omitempty"`
	ProductID       string          `json:"product_id" validate:"required"`
	WarehouseID     string          `json:"warehouse_id" validate:"required"`
	ProductionDate  time.Time       `json:"production_date"`
	PlannedQuantity decimal.Decimal `json:"planned_quantity"`
	UnitID          string          `json:"unit_id,omitempty"`
}

// AddBatchMaterialRequest entrada para asignar materia prima a un lote.
type AddBatchMaterialRequest struct {
	RawMaterialID string          `json:"raw_material_id" validate:"required"`
	UsedQuantity  decimal.Decimal `json:"used_quantity"`
	UnitID        string          `json:"unit_id,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost,omitempty"`
}

// BatchMaterialResponse línea de material de un lote.
type BatchMaterialResponse struct {
	ID            string          `json:"id"`
	RawMaterialID string          `json:"raw_material_id"`
	UsedQuantity  decimal.Decimal `json:"used_quantity"`
	UnitID        string          `json:"unit_id,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	LineCost      decimal.Decimal `json:"line_cost"`
}

// BatchResponse salida de un lote de producción.
type BatchResponse struct {
	ID                string                  `json:"id"`
	BatchCode         string                  `json:"batch_code"`
	ProductID         string                  `json:"product_id"`
	WarehouseID       string                  `json:"warehouse_id"`
	ProductionDate    time.Time               `json:"production_date"`
	PlannedQuantity   decimal.Decimal         `json:"planned_quantity"`
	UnitID            string                  `json:"unit_id,omitempty"`
	Status            string                  `json:"status"`
	ManagerID         string                  `json:"manager_id,omitempty"`
	MaterialCostTotal decimal.Decimal         `json:"material_cost_total"`
	UnitCost          decimal.Decimal         `json:"unit_cost"`
	CompletedAt       *time.Time              `json:"completed_at,omitempty"`
	Materials         []BatchMaterialResponse `json:"materials,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

// BatchListResponse listado paginado de lotes.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
