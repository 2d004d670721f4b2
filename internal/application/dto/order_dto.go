package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest entrada para crear una orden de venta.
type CreateOrderRequest struct {
	OrderCode   string          `json:"order_code,omitempty"`
	ClientID    string          `json:"client_id" validate:"required"`
	WarehouseID string          `json:"warehouse_id" validate:"required"`
	OrderDate   time.Time       `json:"order_date"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Notes       string          `json:"notes,omitempty"`
}

// OrderItemRequest entrada para una línea de la orden.
type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price,omitempty"`
}

// OrderItemResponse línea de una orden de venta.
type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// OrderResponse salida de una orden de venta.
type OrderResponse struct {
	ID            string              `json:"id"`
	OrderCode     string              `json:"order_code"`
	ClientID      string              `json:"client_id"`
	WarehouseID   string              `json:"warehouse_id"`
	OrderDate     time.Time           `json:"order_date"`
	Status        string              `json:"status"`
	TaxRate       decimal.Decimal     `json:"tax_rate"`
	ItemsSubtotal decimal.Decimal     `json:"items_subtotal"`
	TaxAmount     decimal.Decimal     `json:"tax_amount"`
	Total         decimal.Decimal     `json:"total"`
	Notes         string              `json:"notes,omitempty"`
	Items         []OrderItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// OrderListResponse listado paginado de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
