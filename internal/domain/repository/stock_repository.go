package repository

import (
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
)

// StockRepository define el puerto del snapshot de stock por (ítem, almacén).
// Usado dentro de transacciones para garantizar consistencia con el Kardex.
type StockRepository interface {
	Get(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	ListByWarehouse(warehouseID string) ([]*entity.Stock, error)
}
