package kardex

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// RecordMovementUseCase registra movimientos en el Kardex de forma
// transaccional: lee el último saldo bloqueando la fila (SELECT FOR UPDATE),
// calcula el nuevo saldo con costo promedio ponderado y persiste el asiento
// junto con el snapshot de stock. La secuencia leer-calcular-insertar queda
// serializada por clave (almacén, ítem); claves distintas no se bloquean
// entre sí.
type RecordMovementUseCase struct {
	txRunner      TxRunner
	kardexRepo    repository.KardexRepository
	materialRepo  repository.RawMaterialRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewRecordMovementUseCase construye el caso de uso. Los repos recibidos aquí
// se usan solo para lecturas fuera de transacción; las escrituras pasan por
// los repos que entrega el TxRunner.
func NewRecordMovementUseCase(
	txRunner TxRunner,
	kardexRepo repository.KardexRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		txRunner:      txRunner,
		kardexRepo:    kardexRepo,
		materialRepo:  materialRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// MovementInput entrada para registrar un movimiento de Kardex.
type MovementInput struct {
	WarehouseID string
	Item        kardex.ItemRef
	Type        string // ENTRADA | SALIDA
	Reason      string // COMPRA, PRODUCCION, VENTA, AJUSTE, DEVOLUCION
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	ReferenceID string
	Notes       string
	RecordedBy  string
}

// RecordMovement valida la entrada, resuelve ítem y almacén, y ejecuta el
// asiento dentro de una transacción. No rechaza salidas sin stock suficiente:
// esa validación corresponde al flujo que llama (lote, orden), ANTES de llegar
// aquí; el saldo negativo resultante se ajusta a cero según la política del
// Kardex.
func (uc *RecordMovementUseCase) RecordMovement(ctx context.Context, input MovementInput) (*entity.KardexEntry, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Validar que ítem y almacén existan (lecturas fuera de la tx).
	catalog := NewCatalog(uc.materialRepo, uc.productRepo)
	if _, err := catalog.Resolve(input.Item); err != nil {
		return nil, err
	}
	wh, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	var entry *entity.KardexEntry
	err = uc.txRunner.Run(ctx, func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
	) error {
		var txErr error
		entry, txErr = uc.RecordInTx(kardexRepo, stockRepo, materialRepo, productRepo, input, now)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// RecordInTx ejecuta el asiento usando repositorios ya atados a una
// transacción del caller (cierre de lote, orden de venta, recepción). El
// caller es responsable de abrir y confirmar la transacción.
func (uc *RecordMovementUseCase) RecordInTx(
	kardexRepo repository.KardexRepository,
	stockRepo repository.StockRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	input MovementInput,
	now time.Time,
) (*entity.KardexEntry, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	// Lock de la fila de stock ANTES de leer el último asiento. El primer
	// movimiento de una clave no tiene asiento previo que bloquear; la fila
	// de stock (creada en cero si no existe) es el punto de serialización
	// que cubre también ese caso.
	stock, err := stockRepo.GetForUpdate(input.Item, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	// Último saldo de la clave (almacén, ítem), bloqueando la fila: dos
	// movimientos concurrentes de la misma clave se serializan aquí.
	last, err := kardexRepo.LatestForUpdate(input.WarehouseID, input.Item)
	if err != nil {
		return nil, err
	}
	prior := kardex.ZeroBalance()
	if last != nil {
		prior = kardex.Balance{
			Quantity:  last.BalanceQuantity,
			TotalCost: last.BalanceTotalCost,
			AvgCost:   last.BalanceAvgCost,
		}
	}

	newBalance, err := kardex.Calculate(prior, kardex.Movement{
		Type:     input.Type,
		Quantity: input.Quantity,
		UnitCost: input.UnitCost,
	})
	if err != nil {
		return nil, err
	}

	entry := &entity.KardexEntry{
		ID:          uuid.New().String(),
		Fecha:       now,
		ItemType:    string(input.Item.Kind),
		ItemID:      input.Item.ID,
		WarehouseID: input.WarehouseID,

		MovementType: input.Type,
		Reason:       input.Reason,
		Quantity:     input.Quantity,
		UnitCost:     input.UnitCost,
		TotalCost:    kardex.MovementTotal(input.Quantity, input.UnitCost),

		BalanceQuantity:  newBalance.Quantity,
		BalanceTotalCost: newBalance.TotalCost,
		BalanceAvgCost:   newBalance.AvgCost,

		ReferenceID: input.ReferenceID,
		Notes:       input.Notes,
		RecordedBy:  input.RecordedBy,
		CreatedAt:   now,
	}
	if err := kardexRepo.Append(entry); err != nil {
		return nil, err
	}

	// Refrescar el snapshot de stock de la clave con el saldo resultante.
	stock.Quantity = newBalance.Quantity
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(stock); err != nil {
		return nil, err
	}

	// Contadores cacheados del catálogo: delta del movimiento, y el promedio
	// de la materia prima en cada ENTRADA (igual que el sistema original).
	catalog := NewCatalog(materialRepo, productRepo)
	holder, err := catalog.Resolve(input.Item)
	if err != nil {
		return nil, err
	}
	delta := input.Quantity
	if input.Type == entity.MovementSalida {
		delta = input.Quantity.Neg()
	}
	if err := holder.AdjustStock(delta); err != nil {
		return nil, err
	}
	if input.Item.Kind == kardex.ItemMateriaPrima && input.Type == entity.MovementEntrada {
		if err := materialRepo.UpdateAverageCost(input.Item.ID, newBalance.AvgCost); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

// CurrentBalance devuelve el saldo actual de (almacén, ítem); saldo cero si
// no hay movimientos registrados.
func (uc *RecordMovementUseCase) CurrentBalance(ctx context.Context, warehouseID string, ref kardex.ItemRef) (kardex.Balance, error) {
	if !ref.Valid() || warehouseID == "" {
		return kardex.Balance{}, domain.ErrInvalidInput
	}
	last, err := uc.kardexRepo.Latest(warehouseID, ref)
	if err != nil {
		return kardex.Balance{}, err
	}
	if last == nil {
		return kardex.ZeroBalance(), nil
	}
	return kardex.Balance{
		Quantity:  last.BalanceQuantity,
		TotalCost: last.BalanceTotalCost,
		AvgCost:   last.BalanceAvgCost,
	}, nil
}

// CurrentBalanceInTx lee el saldo con los repos de una transacción en curso,
// bloqueando la fila. Lo usa el cierre de lote para validar stock de todas
// las líneas antes de escribir.
func (uc *RecordMovementUseCase) CurrentBalanceInTx(kardexRepo repository.KardexRepository, warehouseID string, ref kardex.ItemRef) (kardex.Balance, error) {
	last, err := kardexRepo.LatestForUpdate(warehouseID, ref)
	if err != nil {
		return kardex.Balance{}, err
	}
	if last == nil {
		return kardex.ZeroBalance(), nil
	}
	return kardex.Balance{
		Quantity:  last.BalanceQuantity,
		TotalCost: last.BalanceTotalCost,
		AvgCost:   last.BalanceAvgCost,
	}, nil
}

// AdjustInput entrada para un ajuste manual de inventario.
type AdjustInput struct {
	WarehouseID string
	Item        kardex.ItemRef
	Quantity    decimal.Decimal // con signo: positivo entra, negativo sale
	UnitCost    decimal.Decimal // opcional; cero usa el costo promedio vigente
	Notes       string
	RecordedBy  string
}

// Adjust registra un ajuste manual: cantidad positiva genera ENTRADA/AJUSTE,
// negativa genera SALIDA/AJUSTE valorada al promedio vigente.
func (uc *RecordMovementUseCase) Adjust(ctx context.Context, input AdjustInput) (*entity.KardexEntry, error) {
	if input.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	movType := entity.MovementEntrada
	qty := input.Quantity
	if qty.IsNegative() {
		movType = entity.MovementSalida
		qty = qty.Neg()
	}
	cost := input.UnitCost
	if cost.IsZero() {
		balance, err := uc.CurrentBalance(ctx, input.WarehouseID, input.Item)
		if err != nil {
			return nil, err
		}
		cost = balance.AvgCost
	}
	return uc.RecordMovement(ctx, MovementInput{
		WarehouseID: input.WarehouseID,
		Item:        input.Item,
		Type:        movType,
		Reason:      entity.ReasonAjuste,
		Quantity:    qty,
		UnitCost:    cost,
		Notes:       input.Notes,
		RecordedBy:  input.RecordedBy,
	})
}

// History lista los movimientos de (almacén, ítem) en orden ascendente por
// (fecha, secuencia), acotado por fechas opcionales.
func (uc *RecordMovementUseCase) History(ctx context.Context, warehouseID string, ref kardex.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	if !ref.Valid() || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return uc.kardexRepo.History(warehouseID, ref, from, to, limit, offset)
}

func validateInput(input MovementInput) error {
	if input.Type != entity.MovementEntrada && input.Type != entity.MovementSalida {
		return domain.ErrInvalidMovement
	}
	if !input.Quantity.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if input.UnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if !entity.ValidReason(input.Reason) {
		return domain.ErrInvalidInput
	}
	if !input.Item.Valid() || input.WarehouseID == "" {
		return domain.ErrInvalidInput
	}
	return nil
}
