// Package reception implementa la recepción de materia prima: el registro
// administrativo de la llegada y su asiento ENTRADA/COMPRA en el Kardex
// ocurren en la misma transacción.
package reception

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// TxRunner abre una transacción y entrega repositorios atados a ella.
type TxRunner interface {
	RunReception(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error) error
}

// ReceptionUseCase registra recepciones de materia prima.
type ReceptionUseCase struct {
	txRunner      TxRunner
	recorder      *appkardex.RecordMovementUseCase
	receptionRepo repository.ReceptionRepository
	materialRepo  repository.RawMaterialRepository
	supplierRepo  repository.SupplierRepository
	warehouseRepo repository.WarehouseRepository
}

// NewReceptionUseCase construye el caso de uso.
func NewReceptionUseCase(
	txRunner TxRunner,
	recorder *appkardex.RecordMovementUseCase,
	receptionRepo repository.ReceptionRepository,
	materialRepo repository.RawMaterialRepository,
	supplierRepo repository.SupplierRepository,
	warehouseRepo repository.WarehouseRepository,
) *ReceptionUseCase {
	return &ReceptionUseCase{
		txRunner:      txRunner,
		recorder:      recorder,
		receptionRepo: receptionRepo,
		materialRepo:  materialRepo,
		supplierRepo:  supplierRepo,
		warehouseRepo: warehouseRepo,
	}
}

// ReceptionInput entrada para registrar una recepción.
type ReceptionInput struct {
	RawMaterialID string
	SupplierID    string
	WarehouseID   string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	InvoiceNumber string
	Lot           string
	Notes         string
	ReceivedBy    string
	ReceivedAt    time.Time
}

// Receive registra la recepción y su ENTRADA/COMPRA en una transacción.
// Además refresca el último precio de compra conocido de la materia prima;
// el costo promedio lo recalcula el propio asiento del Kardex.
func (uc *ReceptionUseCase) Receive(ctx context.Context, input ReceptionInput) (*entity.MaterialReception, error) {
	if !input.Quantity.GreaterThan(decimal.Zero) || !input.UnitCost.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	material, err := uc.materialRepo.GetByID(input.RawMaterialID)
	if err != nil || material == nil {
		return nil, domain.ErrNotFound
	}
	supplier, err := uc.supplierRepo.GetByID(input.SupplierID)
	if err != nil || supplier == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil || wh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	rec := &entity.MaterialReception{
		ID:            uuid.New().String(),
		RawMaterialID: input.RawMaterialID,
		SupplierID:    input.SupplierID,
		WarehouseID:   input.WarehouseID,
		Quantity:      input.Quantity,
		UnitCost:      input.UnitCost,
		InvoiceNumber: input.InvoiceNumber,
		Lot:           input.Lot,
		Notes:         input.Notes,
		ReceivedBy:    input.ReceivedBy,
		ReceivedAt:    receivedAt,
		CreatedAt:     now,
	}

	err = uc.txRunner.RunReception(ctx, func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		receptionRepo repository.ReceptionRepository,
	) error {
		if err := receptionRepo.Create(rec); err != nil {
			return err
		}
		if _, err := uc.recorder.RecordInTx(kardexRepo, stockRepo, materialRepo, productRepo, appkardex.MovementInput{
			WarehouseID: input.WarehouseID,
			Item:        kardex.MateriaPrimaRef(input.RawMaterialID),
			Type:        entity.MovementEntrada,
			Reason:      entity.ReasonCompra,
			Quantity:    input.Quantity,
			UnitCost:    input.UnitCost,
			ReferenceID: rec.ID,
			Notes:       "Recepción factura " + input.InvoiceNumber,
			RecordedBy:  input.ReceivedBy,
		}, now); err != nil {
			return err
		}
		material.UnitPrice = input.UnitCost
		material.UpdatedAt = now
		return materialRepo.Update(material)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// GetReception devuelve una recepción puntual.
func (uc *ReceptionUseCase) GetReception(ctx context.Context, id string) (*entity.MaterialReception, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	rec, err := uc.receptionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// ListReceptions lista recepciones filtrando por materia prima y/o proveedor.
func (uc *ReceptionUseCase) ListReceptions(ctx context.Context, rawMaterialID, supplierID string, limit, offset int) ([]*entity.MaterialReception, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.receptionRepo.List(rawMaterialID, supplierID, limit, offset)
}
