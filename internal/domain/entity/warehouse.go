package entity

import "time"

// Warehouse representa un almacén físico donde se guarda materia prima y producto terminado.
type Warehouse struct {
	ID        string
	Name      string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
