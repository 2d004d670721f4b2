package kardex

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de Kardex.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// StockHolder expone el contador de stock cacheado de un ítem del catálogo,
// sin importar si es materia prima o producto.
type StockHolder interface {
	Name() string
	Stock() decimal.Decimal
	// AdjustStock suma delta al contador cacheado (negativo para consumos).
	AdjustStock(delta decimal.Decimal) error
}
