package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/application/production"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El cierre de lote valida TODAS las líneas antes de
// escribir, así que incluso sin rollback real el libro queda intacto cuando
// falta stock: eso es exactamente lo que verifican estos tests.
// ──────────────────────────────────────────────────────────────────────────────

type fakeKardexRepo struct {
	entries []*entity.KardexEntry
	seq     int64
}

func (r *fakeKardexRepo) Append(entry *entity.KardexEntry) error {
	r.seq++
	entry.Seq = r.seq
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeKardexRepo) Latest(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.WarehouseID == warehouseID && e.ItemType == string(ref.Kind) && e.ItemID == ref.ID {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeKardexRepo) LatestForUpdate(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	return r.Latest(warehouseID, ref)
}

func (r *fakeKardexRepo) History(warehouseID string, ref kardex.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for _, e := range r.entries {
		if e.WarehouseID == warehouseID && e.ItemType == string(ref.Kind) && e.ItemID == ref.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeKardexRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	return r.entries, nil
}

type fakeStockRepo struct {
	rows map[string]*entity.Stock
}

func stockKey(itemType, itemID, warehouseID string) string {
	return itemType + "|" + itemID + "|" + warehouseID
}

func (r *fakeStockRepo) Get(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	return r.rows[stockKey(string(ref.Kind), ref.ID, warehouseID)], nil
}

func (r *fakeStockRepo) GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.rows[stockKey(string(ref.Kind), ref.ID, warehouseID)]; ok {
		return s, nil
	}
	return &entity.Stock{ItemType: string(ref.Kind), ItemID: ref.ID, WarehouseID: warehouseID}, nil
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	r.rows[stockKey(stock.ItemType, stock.ItemID, stock.WarehouseID)] = stock
	return nil
}

func (r *fakeStockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	return nil, nil
}

type fakeMaterialRepo struct {
	rows map[string]*entity.RawMaterial
}

func (r *fakeMaterialRepo) Create(m *entity.RawMaterial) error { r.rows[m.ID] = m; return nil }
func (r *fakeMaterialRepo) GetByID(id string) (*entity.RawMaterial, error) {
	return r.rows[id], nil
}
func (r *fakeMaterialRepo) GetByCode(code string) (*entity.RawMaterial, error) { return nil, nil }
func (r *fakeMaterialRepo) List(search string, limit, offset int) ([]*entity.RawMaterial, error) {
	return nil, nil
}
func (r *fakeMaterialRepo) Update(m *entity.RawMaterial) error { r.rows[m.ID] = m; return nil }
func (r *fakeMaterialRepo) UpdateAverageCost(id string, cost decimal.Decimal) error {
	if m, ok := r.rows[id]; ok {
		m.AverageCost = cost
	}
	return nil
}
func (r *fakeMaterialRepo) AdjustStock(id string, delta decimal.Decimal) error {
	if m, ok := r.rows[id]; ok {
		m.Stock = m.Stock.Add(delta)
	}
	return nil
}

type fakeProductRepo struct {
	rows map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.rows[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.rows[id], nil
}
func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Update(p *entity.Product) error                 { r.rows[p.ID] = p; return nil }
func (r *fakeProductRepo) UpdateUnitCost(productID string, cost decimal.Decimal) error {
	if p, ok := r.rows[productID]; ok {
		p.UnitCost = cost
	}
	return nil
}
func (r *fakeProductRepo) AdjustStock(productID string, delta decimal.Decimal) error {
	if p, ok := r.rows[productID]; ok {
		p.Stock = p.Stock.Add(delta)
	}
	return nil
}
func (r *fakeProductRepo) List(search string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Delete(id string) error { delete(r.rows, id); return nil }

type fakeWarehouseRepo struct {
	rows map[string]*entity.Warehouse
}

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error { r.rows[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.rows[id], nil
}
func (r *fakeWarehouseRepo) Update(w *entity.Warehouse) error { r.rows[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	return nil, nil
}
func (r *fakeWarehouseRepo) Delete(id string) error { delete(r.rows, id); return nil }

type fakeBatchRepo struct {
	batches map[string]*entity.ProductionBatch
	lines   []*entity.BatchMaterial

	// onGetForUpdate simula escrituras de una transacción rival que commitea
	// justo antes de que el cierre tome el lock de la fila.
	onGetForUpdate func(*entity.ProductionBatch)
}

func (r *fakeBatchRepo) Create(b *entity.ProductionBatch) error {
	if b.BatchCode == "" {
		b.BatchCode = "LP000001"
	}
	r.batches[b.ID] = b
	return nil
}

func (r *fakeBatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	return r.batches[id], nil
}

func (r *fakeBatchRepo) GetByIDForUpdate(id string) (*entity.ProductionBatch, error) {
	b := r.batches[id]
	if b != nil && r.onGetForUpdate != nil {
		r.onGetForUpdate(b)
	}
	return b, nil
}

func (r *fakeBatchRepo) GetByCode(code string) (*entity.ProductionBatch, error) {
	for _, b := range r.batches {
		if b.BatchCode == code {
			return b, nil
		}
	}
	return nil, nil
}

func (r *fakeBatchRepo) List(status, productID string, limit, offset int) ([]*entity.ProductionBatch, error) {
	var out []*entity.ProductionBatch
	for _, b := range r.batches {
		if status != "" && b.Status != status {
			continue
		}
		if productID != "" && b.ProductID != productID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBatchRepo) Update(b *entity.ProductionBatch) error { r.batches[b.ID] = b; return nil }

func (r *fakeBatchRepo) AddMaterial(line *entity.BatchMaterial) error {
	r.lines = append(r.lines, line)
	return nil
}

func (r *fakeBatchRepo) UpdateMaterial(line *entity.BatchMaterial) error {
	for i, l := range r.lines {
		if l.ID == line.ID {
			r.lines[i] = line
		}
	}
	return nil
}

func (r *fakeBatchRepo) DeleteMaterial(lineID string) error {
	out := r.lines[:0]
	for _, l := range r.lines {
		if l.ID != lineID {
			out = append(out, l)
		}
	}
	r.lines = out
	return nil
}

func (r *fakeBatchRepo) ListMaterials(batchID string) ([]*entity.BatchMaterial, error) {
	var out []*entity.BatchMaterial
	for _, l := range r.lines {
		if l.BatchID == batchID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeSettlementRunner struct {
	kardexRepo   repository.KardexRepository
	stockRepo    repository.StockRepository
	materialRepo repository.RawMaterialRepository
	productRepo  repository.ProductRepository
	batchRepo    repository.BatchRepository
}

func (r *fakeSettlementRunner) RunSettlement(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	stockRepo repository.StockRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
) error) error {
	return fn(r.kardexRepo, r.stockRepo, r.materialRepo, r.productRepo, r.batchRepo)
}

// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc           *production.BatchUseCase
	recorder     *appkardex.RecordMovementUseCase
	kardexRepo   *fakeKardexRepo
	materialRepo *fakeMaterialRepo
	productRepo  *fakeProductRepo
	batchRepo    *fakeBatchRepo
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newFixture() *fixture {
	kardexRepo := &fakeKardexRepo{}
	stockRepo := &fakeStockRepo{rows: make(map[string]*entity.Stock)}
	materialRepo := &fakeMaterialRepo{rows: map[string]*entity.RawMaterial{
		"MP000001": {ID: "MP000001", Name: "Soda Cáustica", AverageCost: dec("10.0000")},
		"MP000002": {ID: "MP000002", Name: "Ácido Cítrico", AverageCost: dec("4.0000")},
	}}
	productRepo := &fakeProductRepo{rows: map[string]*entity.Product{
		"prod-1": {ID: "prod-1", Name: "Desengrasante Industrial 20L"},
	}}
	warehouseRepo := &fakeWarehouseRepo{rows: map[string]*entity.Warehouse{
		"wh-1": {ID: "wh-1", Name: "Bodega Principal"},
	}}
	batchRepo := &fakeBatchRepo{batches: make(map[string]*entity.ProductionBatch)}

	recorder := appkardex.NewRecordMovementUseCase(nil, kardexRepo, materialRepo, productRepo, warehouseRepo)
	runner := &fakeSettlementRunner{
		kardexRepo:   kardexRepo,
		stockRepo:    stockRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		batchRepo:    batchRepo,
	}
	return &fixture{
		uc:           production.NewBatchUseCase(runner, recorder, batchRepo, materialRepo, productRepo, warehouseRepo),
		recorder:     recorder,
		kardexRepo:   kardexRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		batchRepo:    batchRepo,
	}
}

// seedStock registra una ENTRADA directa para dejar saldo disponible de la
// materia prima en el almacén de pruebas.
func (f *fixture) seedStock(t *testing.T, materialID, qty, cost string) {
	t.Helper()
	stockRepo := &fakeStockRepo{rows: make(map[string]*entity.Stock)}
	_, err := f.recorder.RecordInTx(f.kardexRepo, stockRepo, f.materialRepo, f.productRepo, appkardex.MovementInput{
		WarehouseID: "wh-1",
		Item:        kardex.MateriaPrimaRef(materialID),
		Type:        entity.MovementEntrada,
		Reason:      entity.ReasonCompra,
		Quantity:    dec(qty),
		UnitCost:    dec(cost),
		RecordedBy:  "seed",
	}, time.Now())
	require.NoError(t, err)
}

func (f *fixture) newBatch(t *testing.T, planned string) *entity.ProductionBatch {
	t.Helper()
	batch, err := f.uc.CreateBatch(context.Background(), production.BatchInput{
		ProductID:       "prod-1",
		WarehouseID:     "wh-1",
		ProductionDate:  time.Now(),
		PlannedQuantity: dec(planned),
		ManagerID:       uuid.New().String(),
	})
	require.NoError(t, err)
	return batch
}

func (f *fixture) addLine(t *testing.T, batchID, materialID, qty string) *entity.BatchMaterial {
	t.Helper()
	line, err := f.uc.AddMaterial(context.Background(), batchID, production.MaterialLineInput{
		RawMaterialID: materialID,
		UsedQuantity:  dec(qty),
	})
	require.NoError(t, err)
	return line
}

// TestComplete_CierreCompleto cierre feliz de un lote con dos materias primas:
// salidas valoradas al promedio, entrada del producto al costo realizado y
// lote terminado con sus totales.
func TestComplete_CierreCompleto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00") // promedio 10.0000
	f.seedStock(t, "MP000002", "50", "4.00")   // promedio 4.0000

	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20") // 20 × 10.0000 = 200.00
	f.addLine(t, batch.ID, "MP000002", "10") // 10 × 4.0000  =  40.00

	completed, err := f.uc.Complete(ctx, batch.ID, "operario")
	require.NoError(t, err)

	assert.Equal(t, entity.BatchCompleted, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, completed.MaterialCostTotal.Equal(dec("240.00")), "suma de costos de línea")
	assert.True(t, completed.UnitCost.Equal(dec("6.0000")), "240.00 / 40 = 6.0000")

	// Dos salidas de material + una entrada de producto, además de las dos
	// entradas de siembra.
	require.Len(t, f.kardexRepo.entries, 5)

	salida1 := f.kardexRepo.entries[2]
	assert.Equal(t, entity.MovementSalida, salida1.MovementType)
	assert.Equal(t, entity.ReasonProduccion, salida1.Reason)
	assert.Equal(t, "MP000001", salida1.ItemID)
	assert.Equal(t, completed.BatchCode, salida1.ReferenceID)
	assert.True(t, salida1.BalanceQuantity.Equal(dec("80")))
	assert.True(t, salida1.BalanceAvgCost.Equal(dec("10.0000")), "el consumo no altera el promedio")

	entrada, err := f.kardexRepo.Latest("wh-1", kardex.ProductoRef("prod-1"))
	require.NoError(t, err)
	require.NotNil(t, entrada)
	assert.Equal(t, entity.MovementEntrada, entrada.MovementType)
	assert.Equal(t, entity.ReasonProduccion, entrada.Reason)
	assert.True(t, entrada.Quantity.Equal(dec("40")))
	assert.True(t, entrada.UnitCost.Equal(dec("6.0000")))
	assert.True(t, entrada.BalanceQuantity.Equal(dec("40")))

	product := f.productRepo.rows["prod-1"]
	assert.True(t, product.UnitCost.Equal(dec("6.0000")), "costo realizado propagado al catálogo")
	assert.True(t, product.Stock.Equal(dec("40")))

	material := f.materialRepo.rows["MP000001"]
	assert.True(t, material.Stock.Equal(dec("80")))
}

// TestComplete_StockInsuficienteNoEscribeNada si UNA línea no tiene saldo,
// ninguna línea se consume: la validación de todas precede a toda escritura.
func TestComplete_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")
	// MP000002 sin saldo.

	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20")
	f.addLine(t, batch.ID, "MP000002", "10")

	entriesBefore := len(f.kardexRepo.entries)
	_, err := f.uc.Complete(ctx, batch.ID, "operario")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "MP000002", insufficient.MaterialID)
	assert.Equal(t, "Ácido Cítrico", insufficient.Material)
	assert.True(t, insufficient.Required.Equal(dec("10")))
	assert.True(t, insufficient.Available.IsZero())

	assert.Len(t, f.kardexRepo.entries, entriesBefore, "ninguna salida debe registrarse")
	assert.True(t, f.materialRepo.rows["MP000001"].Stock.Equal(dec("100")), "la línea con saldo tampoco se consume")

	stored, _ := f.batchRepo.GetByID(batch.ID)
	assert.Equal(t, entity.BatchPending, stored.Status, "el lote sigue abierto y puede reintentarse")
}

// TestComplete_LoteVacio un lote sin líneas de material no puede cerrarse.
func TestComplete_LoteVacio(t *testing.T) {
	f := newFixture()

	batch := f.newBatch(t, "40")
	_, err := f.uc.Complete(context.Background(), batch.ID, "operario")
	assert.ErrorIs(t, err, domain.ErrEmptyBatch)
}

// TestComplete_RedondeoCostoUnitario el costo unitario se redondea a 4
// decimales half-up sobre el total ya redondeado.
func TestComplete_RedondeoCostoUnitario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")

	batch := f.newBatch(t, "3")
	f.addLine(t, batch.ID, "MP000001", "10") // 100.00 de material

	completed, err := f.uc.Complete(ctx, batch.ID, "operario")
	require.NoError(t, err)

	assert.True(t, completed.MaterialCostTotal.Equal(dec("100.00")))
	assert.True(t, completed.UnitCost.Equal(dec("33.3333")), "100.00 / 3 redondeado a 4 decimales")
}

// TestComplete_NoRepetible un lote completed es terminal: no se completa ni se
// cancela de nuevo.
func TestComplete_NoRepetible(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")
	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20")

	_, err := f.uc.Complete(ctx, batch.ID, "operario")
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, batch.ID, "operario")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.Cancel(ctx, batch.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
}

// TestComplete_CierreConcurrenteAbortaElSegundo el estado del lote se relee
// con bloqueo de fila dentro de la transacción: si otro cierre ganó entre el
// chequeo externo y el lock, el perdedor aborta sin consumir ni producir nada.
func TestComplete_CierreConcurrenteAbortaElSegundo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")
	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20")

	// Cierre rival que commitea justo antes de que este tome el lock.
	f.batchRepo.onGetForUpdate = func(b *entity.ProductionBatch) {
		b.Status = entity.BatchCompleted
	}

	entriesBefore := len(f.kardexRepo.entries)
	_, err := f.uc.Complete(ctx, batch.ID, "operario")

	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Len(t, f.kardexRepo.entries, entriesBefore, "el perdedor no registra movimientos")
	assert.True(t, f.materialRepo.rows["MP000001"].Stock.Equal(dec("100")), "el stock no se consume dos veces")
}

// TestCancel_SinEfectosDeInventario cancelar un lote abierto no genera
// movimientos; cancelar dos veces es una transición inválida.
func TestCancel_SinEfectosDeInventario(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")
	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20")

	entriesBefore := len(f.kardexRepo.entries)
	cancelled, err := f.uc.Cancel(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchCancelled, cancelled.Status)
	assert.Len(t, f.kardexRepo.entries, entriesBefore)

	_, err = f.uc.Cancel(ctx, batch.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.uc.Complete(ctx, batch.ID, "operario")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// TestStart_Transiciones pending → in_progress → completed; in_progress no
// vuelve a iniciarse.
func TestStart_Transiciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedStock(t, "MP000001", "100", "10.00")
	batch := f.newBatch(t, "40")
	f.addLine(t, batch.ID, "MP000001", "20")

	started, err := f.uc.Start(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BatchInProgress, started.Status)

	_, err = f.uc.Start(ctx, batch.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	completed, err := f.uc.Complete(ctx, batch.ID, "operario")
	require.NoError(t, err)
	assert.Equal(t, entity.BatchCompleted, completed.Status)
}

// TestAddMaterial_CongelaCostoPromedio la línea toma el promedio vigente del
// material cuando el llamador no trae costo explícito.
func TestAddMaterial_CongelaCostoPromedio(t *testing.T) {
	f := newFixture()

	batch := f.newBatch(t, "40")
	line := f.addLine(t, batch.ID, "MP000001", "20")

	assert.True(t, line.UnitCost.Equal(dec("10.0000")))
	assert.True(t, line.LineCost.Equal(dec("200.00")))

	// Sobre un lote terminado ya no se aceptan líneas.
	f.seedStock(t, "MP000001", "100", "10.00")
	_, err := f.uc.Complete(context.Background(), batch.ID, "operario")
	require.NoError(t, err)
	_, err = f.uc.AddMaterial(context.Background(), batch.ID, production.MaterialLineInput{
		RawMaterialID: "MP000001",
		UsedQuantity:  dec("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
