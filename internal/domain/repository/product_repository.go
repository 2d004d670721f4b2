package repository

import (
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(product *entity.Product) error
	GetByID(id string) (*entity.Product, error)
	GetByCode(code string) (*entity.Product, error)
	Update(product *entity.Product) error
	// UpdateUnitCost fija el costo unitario realizado (lo escribe el cierre de lote).
	UpdateUnitCost(productID string, cost decimal.Decimal) error
	// AdjustStock suma delta (positivo o negativo) al contador global cacheado.
	AdjustStock(productID string, delta decimal.Decimal) error
	List(search string, limit, offset int) ([]*entity.Product, error)
	Delete(id string) error
}
