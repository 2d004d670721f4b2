package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRawMaterialRequest entrada para crear una materia prima.
type CreateRawMaterialRequest struct {
	Code        string           `json:"code" validate:"required,max=50"`
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description,omitempty"`
	UnitID      string           `json:"unit_id" validate:"required"`
	Density     *decimal.Decimal `json:"density,omitempty"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
}

// UpdateRawMaterialRequest entrada parcial para actualizar una materia prima.
// Stock y AverageCost no se editan a mano: los mantiene el Kardex.
type UpdateRawMaterialRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	UnitID      *string          `json:"unit_id,omitempty"`
	Density     *decimal.Decimal `json:"density,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// RawMaterialResponse salida de una materia prima.
type RawMaterialResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	UnitID      string           `json:"unit_id"`
	Density     *decimal.Decimal `json:"density,omitempty"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	Stock       decimal.Decimal  `json:"stock"`
	AverageCost decimal.Decimal  `json:"average_cost"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// RawMaterialListResponse listado paginado de materias primas.
type RawMaterialListResponse struct {
	Items []RawMaterialResponse `json:"items"`
	Page  PageResponse          `json:"page"`
}
