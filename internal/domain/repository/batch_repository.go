package repository

import "github.com/innoquim/erp-backend/internal/domain/entity"

// BatchRepository define el puerto de persistencia de lotes de producción y
// sus líneas de material. Las líneas viven dentro del agregado del lote:
// (BatchID, RawMaterialID) es único y se eliminan en cascada con él.
type BatchRepository interface {
	Create(batch *entity.ProductionBatch) error
	GetByID(id string) (*entity.ProductionBatch, error)
	// GetByIDForUpdate bloquea la fila del lote (SELECT FOR UPDATE) para
	// revalidar su estado dentro de la transacción de cierre.
	GetByIDForUpdate(id string) (*entity.ProductionBatch, error)
	GetByCode(code string) (*entity.ProductionBatch, error)
	List(status, productID string, limit, offset int) ([]*entity.ProductionBatch, error)
	Update(batch *entity.ProductionBatch) error

	AddMaterial(line *entity.BatchMaterial) error
	UpdateMaterial(line *entity.BatchMaterial) error
	DeleteMaterial(lineID string) error
	ListMaterials(batchID string) ([]*entity.BatchMaterial, error)
}
