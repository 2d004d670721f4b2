package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto terminado de INNO-QUIM.
// UnitCost se fija al completar un lote de producción (costo de materiales /
// cantidad producida); Stock es el contador cacheado global.
type Product struct {
	ID          string
	Code        string // product_code, único
	Name        string
	Description string
	UnitID      string
	Weight      decimal.Decimal
	Price       decimal.Decimal // precio de venta
	UnitCost    decimal.Decimal // costo unitario realizado (4 decimales)
	TaxRate     decimal.Decimal // % IVA aplicado en órdenes de venta
	Stock       decimal.Decimal
	MinStock    decimal.Decimal
	MaxStock    *decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StockStatus clasifica el nivel de stock contra los mínimos/máximos configurados.
func (p *Product) StockStatus() string {
	if p.Stock.LessThanOrEqual(p.MinStock) {
		return "BAJO"
	}
	if p.MaxStock != nil && p.Stock.GreaterThanOrEqual(*p.MaxStock) {
		return "ALTO"
	}
	return "NORMAL"
}
