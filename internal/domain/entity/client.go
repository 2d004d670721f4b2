package entity

import "time"

// Client representa un cliente de INNO-QUIM.
type Client struct {
	ID        string
	Name      string
	TaxID     string // NIT/RUC, único
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
