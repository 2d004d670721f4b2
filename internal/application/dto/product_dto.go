package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto terminado.
type CreateProductRequest struct {
	Code        string           `json:"code" validate:"required,min=1,max=100"`
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description,omitempty"`
	UnitID      string           `json:"unit_id" validate:"required"`
	Weight      decimal.Decimal  `json:"weight"`
	Price       decimal.Decimal  `json:"price"`
	TaxRate     decimal.Decimal  `json:"tax_rate"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
}

// UpdateProductRequest entrada parcial para actualizar un producto.
// UnitCost y Stock no se editan a mano: los fija la producción y el Kardex.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description,omitempty"`
	UnitID      *string          `json:"unit_id,omitempty"`
	Weight      *decimal.Decimal `json:"weight,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	UnitID      string           `json:"unit_id"`
	Weight      decimal.Decimal  `json:"weight"`
	Price       decimal.Decimal  `json:"price"`
	UnitCost    decimal.Decimal  `json:"unit_cost"`
	TaxRate     decimal.Decimal  `json:"tax_rate"`
	Stock       decimal.Decimal  `json:"stock"`
	MinStock    decimal.Decimal  `json:"min_stock"`
	MaxStock    *decimal.Decimal `json:"max_stock,omitempty"`
	StockStatus string           `json:"stock_status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
