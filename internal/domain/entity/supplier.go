package entity

import "time"

// Supplier representa un proveedor de materias primas.
type Supplier struct {
	ID        string
	Name      string
	TaxID     string // único
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
