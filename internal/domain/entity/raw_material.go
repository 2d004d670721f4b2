package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawMaterial representa una materia prima química usada en producción.
// ID usa el formato MP000001 (el repositorio lo autogenera en Create).
// Stock y AverageCost son contadores cacheados: la fuente de verdad por almacén
// es el Kardex; estos campos evitan reconstruir el historial en listados.
type RawMaterial struct {
	ID          string // MPnnnnnn
	Code        string // código interno, único
	Name        string
	Description string
	UnitID      string
	Density     *decimal.Decimal // opcional, g/ml
	MinStock    decimal.Decimal
	MaxStock    *decimal.Decimal
	Stock       decimal.Decimal // stock_actual global cacheado
	AverageCost decimal.Decimal // costo promedio ponderado (4 decimales)
	UnitPrice   decimal.Decimal // último precio de compra conocido
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
