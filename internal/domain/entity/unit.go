package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit representa una unidad de medida (kg, litros, galones, etc).
// ConversionFactor expresa la equivalencia contra la unidad base del sistema.
type Unit struct {
	ID               string
	Name             string // único
	Symbol           string
	ConversionFactor decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
