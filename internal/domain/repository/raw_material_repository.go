package repository

import (
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain/entity"
)

// RawMaterialRepository define el puerto de persistencia de materias primas.
type RawMaterialRepository interface {
	// Create persiste la materia prima; si ID está vacío genera el siguiente
	// código MPnnnnnn.
	Create(material *entity.RawMaterial) error
	GetByID(id string) (*entity.RawMaterial, error)
	GetByCode(code string) (*entity.RawMaterial, error)
	List(search string, limit, offset int) ([]*entity.RawMaterial, error)
	Update(material *entity.RawMaterial) error
	// UpdateAverageCost fija el costo promedio cacheado (lo escribe el Kardex en cada ENTRADA).
	UpdateAverageCost(id string, cost decimal.Decimal) error
	// AdjustStock suma delta (positivo o negativo) al contador global cacheado.
	AdjustStock(id string, delta decimal.Decimal) error
}
