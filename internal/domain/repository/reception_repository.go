package repository

import "github.com/innoquim/erp-backend/internal/domain/entity"

// ReceptionRepository define el puerto de persistencia de recepciones de
// materia prima. Las recepciones son registro histórico: no se editan.
type ReceptionRepository interface {
	Create(reception *entity.MaterialReception) error
	GetByID(id string) (*entity.MaterialReception, error)
	List(rawMaterialID, supplierID string, limit, offset int) ([]*entity.MaterialReception, error)
}
