package production

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

// BatchUseCase gestiona el ciclo de vida de los lotes de producción:
// pending → in_progress → completed | cancelled. El cierre (Complete) es el
// único punto del sistema que convierte un lote en movimientos de inventario.
type BatchUseCase struct {
	txRunner      TxRunner
	recorder      *appkardex.RecordMovementUseCase
	batchRepo     repository.BatchRepository
	materialRepo  repository.RawMaterialRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewBatchUseCase construye el caso de uso.
func NewBatchUseCase(
	txRunner TxRunner,
	recorder *appkardex.RecordMovementUseCase,
	batchRepo repository.BatchRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *BatchUseCase {
	return &BatchUseCase{
		txRunner:      txRunner,
		recorder:      recorder,
		batchRepo:     batchRepo,
		materialRepo:  materialRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// BatchInput entrada para crear un lote de producción.
type BatchInput struct {
	BatchCode       string
	ProductID       string
	WarehouseID     string
	ProductionDate  time.Time
	PlannedQuantity decimal.Decimal
	UnitID          string
	ManagerID       string
}

// MaterialLineInput entrada para asignar materia prima a un lote.
// UnitCost opcional: en cero se toma el costo promedio vigente del material.
type MaterialLineInput struct {
	RawMaterialID string
	UsedQuantity  decimal.Decimal
	UnitID        string
	UnitCost      decimal.Decimal
}

// CreateBatch crea el lote en estado pending. Si no viene código de lote el
// repositorio genera el siguiente LPnnnnnn; un código repetido llega como
// ErrDuplicate.
func (uc *BatchUseCase) CreateBatch(ctx context.Context, input BatchInput) (*entity.ProductionBatch, error) {
	if input.ProductID == "" || input.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !input.PlannedQuantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil || wh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	batch := &entity.ProductionBatch{
		ID:              uuid.New().String(),
		BatchCode:       input.BatchCode,
		ProductID:       input.ProductID,
		WarehouseID:     input.WarehouseID,
		ProductionDate:  input.ProductionDate,
		PlannedQuantity: input.PlannedQuantity,
		UnitID:          input.UnitID,
		Status:          entity.BatchPending,
		ManagerID:       input.ManagerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.batchRepo.Create(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// AddMaterial asigna una línea de materia prima a un lote no terminado.
// El costo unitario queda congelado en la línea (snapshot del promedio al
// momento de asignar, salvo que el llamador traiga uno explícito).
func (uc *BatchUseCase) AddMaterial(ctx context.Context, batchID string, input MaterialLineInput) (*entity.BatchMaterial, error) {
	if !input.UsedQuantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == entity.BatchCompleted || batch.Status == entity.BatchCancelled {
		return nil, domain.ErrInvalidTransition
	}
	material, err := uc.materialRepo.GetByID(input.RawMaterialID)
	if err != nil || material == nil {
		return nil, domain.ErrNotFound
	}

	unitCost := input.UnitCost
	if unitCost.IsZero() {
		unitCost = material.AverageCost
	}
	now := time.Now()
	line := &entity.BatchMaterial{
		ID:            uuid.New().String(),
		BatchID:       batch.ID,
		RawMaterialID: material.ID,
		UsedQuantity:  input.UsedQuantity,
		UnitID:        input.UnitID,
		UnitCost:      unitCost,
		LineCost:      kardex.MovementTotal(input.UsedQuantity, unitCost),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.batchRepo.AddMaterial(line); err != nil {
		return nil, err
	}
	return line, nil
}

// RemoveMaterial quita una línea de un lote no terminado.
func (uc *BatchUseCase) RemoveMaterial(ctx context.Context, batchID, lineID string) error {
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return err
	}
	if batch.Status == entity.BatchCompleted || batch.Status == entity.BatchCancelled {
		return domain.ErrInvalidTransition
	}
	return uc.batchRepo.DeleteMaterial(lineID)
}

// Start pasa el lote de pending a in_progress.
func (uc *BatchUseCase) Start(ctx context.Context, batchID string) (*entity.ProductionBatch, error) {
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return nil, err
	}
	if !batch.CanTransition(entity.BatchInProgress) {
		return nil, domain.ErrInvalidTransition
	}
	batch.Status = entity.BatchInProgress
	batch.UpdatedAt = time.Now()
	if err := uc.batchRepo.Update(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// Complete cierra el lote en una sola transacción:
//
//  1. rechaza lotes sin líneas de material (ErrEmptyBatch);
//  2. valida stock suficiente de TODAS las líneas antes de escribir nada;
//  3. registra SALIDA/PRODUCCION por cada línea (descuenta el contador
//     cacheado de cada materia prima);
//  4. calcula material_cost_total y el costo unitario del producto
//     (total / cantidad planificada, 4 decimales half-up);
//  5. registra ENTRADA/PRODUCCION del producto terminado a ese costo;
//  6. deja el lote en completed con costos y fecha de cierre.
//
// Cualquier error después del paso 2 revierte todo: nunca queda un consumo
// sin su entrada correspondiente.
func (uc *BatchUseCase) Complete(ctx context.Context, batchID, actor string) (*entity.ProductionBatch, error) {
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return nil, err
	}
	if !batch.CanTransition(entity.BatchCompleted) {
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	err = uc.txRunner.RunSettlement(ctx, func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
	) error {
		// Relectura con bloqueo de fila: dos cierres concurrentes pasan el
		// chequeo externo, pero solo el primero en tomar el lock cierra; el
		// segundo ve el lote ya completed y aborta aquí.
		locked, err := batchRepo.GetByIDForUpdate(batch.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if !locked.CanTransition(entity.BatchCompleted) {
			return domain.ErrInvalidTransition
		}
		batch = locked

		lines, err := batchRepo.ListMaterials(batch.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return domain.ErrEmptyBatch
		}

		// Validación previa de TODAS las líneas; las lecturas bloquean la
		// fila de saldo, así el stock no puede cambiar debajo nuestro.
		for _, line := range lines {
			ref := kardex.MateriaPrimaRef(line.RawMaterialID)
			balance, err := uc.recorder.CurrentBalanceInTx(kardexRepo, batch.WarehouseID, ref)
			if err != nil {
				return err
			}
			if balance.Quantity.LessThan(line.UsedQuantity) {
				material, merr := materialRepo.GetByID(line.RawMaterialID)
				name := line.RawMaterialID
				if merr == nil && material != nil {
					name = material.Name
				}
				return &domain.InsufficientStockError{
					MaterialID: line.RawMaterialID,
					Material:   name,
					Required:   line.UsedQuantity,
					Available:  balance.Quantity,
				}
			}
		}

		// Consumo de materiales: una SALIDA/PRODUCCION por línea, valorada al
		// costo congelado en la línea.
		materialCostTotal := decimal.Zero
		for _, line := range lines {
			if _, err := uc.recorder.RecordInTx(kardexRepo, stockRepo, materialRepo, productRepo, appkardex.MovementInput{
				WarehouseID: batch.WarehouseID,
				Item:        kardex.MateriaPrimaRef(line.RawMaterialID),
				Type:        entity.MovementSalida,
				Reason:      entity.ReasonProduccion,
				Quantity:    line.UsedQuantity,
				UnitCost:    line.UnitCost,
				ReferenceID: batch.BatchCode,
				Notes:       "Material usado en lote " + batch.BatchCode,
				RecordedBy:  actor,
			}, now); err != nil {
				return err
			}
			materialCostTotal = materialCostTotal.Add(line.LineCost)
		}

		// Costo unitario realizado del producto.
		unitCost := decimal.Zero
		if batch.PlannedQuantity.GreaterThan(decimal.Zero) {
			unitCost = materialCostTotal.Div(batch.PlannedQuantity).Round(4)
		}

		// Alta del producto terminado.
		if _, err := uc.recorder.RecordInTx(kardexRepo, stockRepo, materialRepo, productRepo, appkardex.MovementInput{
			WarehouseID: batch.WarehouseID,
			Item:        kardex.ProductoRef(batch.ProductID),
			Type:        entity.MovementEntrada,
			Reason:      entity.ReasonProduccion,
			Quantity:    batch.PlannedQuantity,
			UnitCost:    unitCost,
			ReferenceID: batch.BatchCode,
			Notes:       "Producción del lote " + batch.BatchCode,
			RecordedBy:  actor,
		}, now); err != nil {
			return err
		}
		if err := productRepo.UpdateUnitCost(batch.ProductID, unitCost); err != nil {
			return err
		}

		batch.Status = entity.BatchCompleted
		batch.MaterialCostTotal = materialCostTotal
		batch.UnitCost = unitCost
		batch.CompletedAt = &now
		batch.UpdatedAt = now
		return batchRepo.Update(batch)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// Cancel anula un lote no completado. La cancelación no toca inventario:
// un lote que nunca se cerró jamás movió stock.
func (uc *BatchUseCase) Cancel(ctx context.Context, batchID string) (*entity.ProductionBatch, error) {
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return nil, err
	}
	if batch.Status == entity.BatchCompleted {
		return nil, domain.ErrAlreadyCompleted
	}
	if batch.Status == entity.BatchCancelled {
		return nil, domain.ErrInvalidTransition
	}
	batch.Status = entity.BatchCancelled
	batch.UpdatedAt = time.Now()
	if err := uc.batchRepo.Update(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// GetBatch devuelve el lote con sus líneas de material.
func (uc *BatchUseCase) GetBatch(ctx context.Context, batchID string) (*entity.ProductionBatch, []*entity.BatchMaterial, error) {
	batch, err := uc.getBatch(batchID)
	if err != nil {
		return nil, nil, err
	}
	lines, err := uc.batchRepo.ListMaterials(batch.ID)
	if err != nil {
		return nil, nil, err
	}
	return batch, lines, nil
}

// ListBatches lista lotes filtrando por estado y/o producto.
func (uc *BatchUseCase) ListBatches(ctx context.Context, status, productID string, limit, offset int) ([]*entity.ProductionBatch, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.batchRepo.List(status, productID, limit, offset)
}

func (uc *BatchUseCase) getBatch(batchID string) (*entity.ProductionBatch, error) {
	if batchID == "" {
		return nil, domain.ErrInvalidInput
	}
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, domain.ErrNotFound
	}
	return batch, nil
}
