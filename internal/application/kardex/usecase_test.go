package kardex_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de persistencia. Reproducen el contrato de
// los repos Postgres (Latest con nil cuando no hay historial, GetForUpdate
// devolviendo fila en cero cuando no existe) sin base de datos.
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

func (r *fakeKardexRepo) matches(e *entity.KardexEntry, warehouseID string, ref kardex.ItemRef) bool {
	return e.WarehouseID == warehouseID && e.ItemType == string(ref.Kind) && e.ItemID == ref.ID
}

func (r *fakeKardexRepo) Latest(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.matches(r.entries[i], warehouseID, ref) {
			return r.entries[i], nil
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
		if !r.matches(e, warehouseID, ref) {
			continue
		}
		if from != nil && e.Fecha.Before(*from) {
			continue
		}
		if to != nil && e.Fecha.After(*to) {
			continue
		}
		out = append(out, e)
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeKardexRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for _, e := range r.entries {
		if e.WarehouseID == warehouseID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStockRepo struct {
	rows map[string]*entity.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[string]*entity.Stock)}
}

func stockKey(itemType, itemID, warehouseID string) string {
	return itemType + "|" + itemID + "|" + warehouseID
}

func (r *fakeStockRepo) Get(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.rows[stockKey(string(ref.Kind), ref.ID, warehouseID)]; ok {
		return s, nil
	}
	return nil, nil
}

func (r *fakeStockRepo) GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.rows[stockKey(string(ref.Kind), ref.ID, warehouseID)]; ok {
		return s, nil
	}
	return &entity.Stock{
		ItemType:    string(ref.Kind),
		ItemID:      ref.ID,
		WarehouseID: warehouseID,
		Quantity:    decimal.Zero,
	}, nil
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	r.rows[stockKey(stock.ItemType, stock.ItemID, stock.WarehouseID)] = stock
	return nil
}

func (r *fakeStockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, s := range r.rows {
		if s.WarehouseID == warehouseID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeMaterialRepo struct {
	rows map[string]*entity.RawMaterial
}

func newFakeMaterialRepo(materials ...*entity.RawMaterial) *fakeMaterialRepo {
	r := &fakeMaterialRepo{rows: make(map[string]*entity.RawMaterial)}
	for _, m := range materials {
		r.rows[m.ID] = m
	}
	return r
}

func (r *fakeMaterialRepo) Create(m *entity.RawMaterial) error { r.rows[m.ID] = m; return nil }
func (r *fakeMaterialRepo) GetByID(id string) (*entity.RawMaterial, error) {
	return r.rows[id], nil
}
func (r *fakeMaterialRepo) GetByCode(code string) (*entity.RawMaterial, error) {
	for _, m := range r.rows {
		if m.Code == code {
			return m, nil
		}
	}
	return nil, nil
}
func (r *fakeMaterialRepo) List(search string, limit, offset int) ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	for _, m := range r.rows {
		out = append(out, m)
	}
	return out, nil
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

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	r := &fakeProductRepo{rows: make(map[string]*entity.Product)}
	for _, p := range products {
		r.rows[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.rows[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.rows[id], nil
}
func (r *fakeProductRepo) GetByCode(code string) (*entity.Product, error) {
	for _, p := range r.rows {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}
func (r *fakeProductRepo) Update(p *entity.Product) error { r.rows[p.ID] = p; return nil }
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
	var out []*entity.Product
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, nil
}
func (r *fakeProductRepo) Delete(id string) error { delete(r.rows, id); return nil }

type fakeWarehouseRepo struct {
	rows map[string]*entity.Warehouse
}

func newFakeWarehouseRepo(warehouses ...*entity.Warehouse) *fakeWarehouseRepo {
	r := &fakeWarehouseRepo{rows: make(map[string]*entity.Warehouse)}
	for _, w := range warehouses {
		r.rows[w.ID] = w
	}
	return r
}

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error { r.rows[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return r.rows[id], nil
}
func (r *fakeWarehouseRepo) Update(w *entity.Warehouse) error { r.rows[w.ID] = w; return nil }
func (r *fakeWarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	var out []*entity.Warehouse
	for _, w := range r.rows {
		out = append(out, w)
	}
	return out, nil
}
func (r *fakeWarehouseRepo) Delete(id string) error { delete(r.rows, id); return nil }

// fakeTxRunner ejecuta el closure directamente sobre los fakes: sin
// transacción real no hay rollback, pero el contrato de firma es el mismo.
type fakeTxRunner struct {
	kardexRepo   repository.KardexRepository
	stockRepo    repository.StockRepository
	materialRepo repository.RawMaterialRepository
	productRepo  repository.ProductRepository
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	stockRepo repository.StockRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(r.kardexRepo, r.stockRepo, r.materialRepo, r.productRepo)
}

// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc           *appkardex.RecordMovementUseCase
	kardexRepo   *fakeKardexRepo
	stockRepo    *fakeStockRepo
	materialRepo *fakeMaterialRepo
	productRepo  *fakeProductRepo
}

func newFixture() *fixture {
	kardexRepo := &fakeKardexRepo{}
	stockRepo := newFakeStockRepo()
	materialRepo := newFakeMaterialRepo(&entity.RawMaterial{
		ID:   "MP000001",
		Code: "SODA-CAUSTICA",
		Name: "Soda Cáustica",
	})
	productRepo := newFakeProductRepo(&entity.Product{
		ID:   "prod-1",
		Code: "DESENGRASANTE-20L",
		Name: "Desengrasante Industrial 20L",
	})
	warehouseRepo := newFakeWarehouseRepo(&entity.Warehouse{ID: "wh-1", Name: "Bodega Principal"})
	runner := &fakeTxRunner{
		kardexRepo:   kardexRepo,
		stockRepo:    stockRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
	}
	return &fixture{
		uc:           appkardex.NewRecordMovementUseCase(runner, kardexRepo, materialRepo, productRepo, warehouseRepo),
		kardexRepo:   kardexRepo,
		stockRepo:    stockRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func entradaInput(qty, cost string) appkardex.MovementInput {
	return appkardex.MovementInput{
		WarehouseID: "wh-1",
		Item:        kardex.MateriaPrimaRef("MP000001"),
		Type:        entity.MovementEntrada,
		Reason:      entity.ReasonCompra,
		Quantity:    dec(qty),
		UnitCost:    dec(cost),
		RecordedBy:  "tester",
	}
}

func salidaInput(qty, cost string) appkardex.MovementInput {
	in := entradaInput(qty, cost)
	in.Type = entity.MovementSalida
	in.Reason = entity.ReasonVenta
	return in
}

// TestRecordMovement_EntradaActualizaSaldoYCatalogo verifica el asiento
// completo de una entrada: balance, snapshot de stock, contador cacheado y
// costo promedio de la materia prima.
func TestRecordMovement_EntradaActualizaSaldoYCatalogo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	entry, err := f.uc.RecordMovement(ctx, entradaInput("100", "10.50"))
	require.NoError(t, err)

	assert.Equal(t, entity.MovementEntrada, entry.MovementType)
	assert.True(t, entry.TotalCost.Equal(dec("1050.00")), "TotalCost = 100 × 10.50")
	assert.True(t, entry.BalanceQuantity.Equal(dec("100")))
	assert.True(t, entry.BalanceTotalCost.Equal(dec("1050.00")))
	assert.True(t, entry.BalanceAvgCost.Equal(dec("10.5000")))

	stock, err := f.stockRepo.Get(kardex.MateriaPrimaRef("MP000001"), "wh-1")
	require.NoError(t, err)
	require.NotNil(t, stock)
	assert.True(t, stock.Quantity.Equal(dec("100")), "el snapshot debe reflejar el saldo del Kardex")

	material, _ := f.materialRepo.GetByID("MP000001")
	assert.True(t, material.Stock.Equal(dec("100")), "contador global cacheado")
	assert.True(t, material.AverageCost.Equal(dec("10.5000")), "el promedio se propaga al catálogo en cada ENTRADA")
}

// TestRecordMovement_SalidaValoradaAlPromedio verifica que una salida se
// descuenta al costo promedio vigente aunque el llamador traiga otro costo,
// y que el promedio del saldo no cambia.
func TestRecordMovement_SalidaValoradaAlPromedio(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.RecordMovement(ctx, entradaInput("100", "10.00"))
	require.NoError(t, err)
	_, err = f.uc.RecordMovement(ctx, entradaInput("50", "13.00"))
	require.NoError(t, err)

	// promedio tras las dos entradas: 1650 / 150 = 11.0000
	entry, err := f.uc.RecordMovement(ctx, salidaInput("30", "99.99"))
	require.NoError(t, err)

	assert.True(t, entry.BalanceQuantity.Equal(dec("120")))
	assert.True(t, entry.BalanceTotalCost.Equal(dec("1320.00")), "descuenta 30 × 11.00 del total")
	assert.True(t, entry.BalanceAvgCost.Equal(dec("11.0000")), "la salida no altera el promedio")
	// El costo del asiento sí conserva el valor del llamador.
	assert.True(t, entry.TotalCost.Equal(dec("2999.70")))

	material, _ := f.materialRepo.GetByID("MP000001")
	assert.True(t, material.Stock.Equal(dec("120")))
}

// TestRecordMovement_SobregiroAjustaACero una salida mayor al saldo deja el
// balance en cero en lugar de negativo.
func TestRecordMovement_SobregiroAjustaACero(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.uc.RecordMovement(ctx, entradaInput("10", "5.00"))
	require.NoError(t, err)

	entry, err := f.uc.RecordMovement(ctx, salidaInput("25", "5.00"))
	require.NoError(t, err)

	assert.True(t, entry.BalanceQuantity.IsZero())
	assert.True(t, entry.BalanceTotalCost.IsZero())
	assert.True(t, entry.BalanceAvgCost.IsZero())

	stock, _ := f.stockRepo.Get(kardex.MateriaPrimaRef("MP000001"), "wh-1")
	assert.True(t, stock.Quantity.IsZero())
}

// TestRecordMovement_Validaciones entradas inválidas no deben tocar el libro.
func TestRecordMovement_Validaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*appkardex.MovementInput)
		wantErr error
	}{
		{"tipo desconocido", func(in *appkardex.MovementInput) { in.Type = "TRANSFERENCIA" }, domain.ErrInvalidMovement},
		{"cantidad cero", func(in *appkardex.MovementInput) { in.Quantity = decimal.Zero }, domain.ErrInvalidInput},
		{"cantidad negativa", func(in *appkardex.MovementInput) { in.Quantity = dec("-5") }, domain.ErrInvalidInput},
		{"costo negativo", func(in *appkardex.MovementInput) { in.UnitCost = dec("-1") }, domain.ErrInvalidInput},
		{"motivo desconocido", func(in *appkardex.MovementInput) { in.Reason = "REGALO" }, domain.ErrInvalidInput},
		{"almacén inexistente", func(in *appkardex.MovementInput) { in.WarehouseID = "wh-fantasma" }, domain.ErrNotFound},
		{"ítem inexistente", func(in *appkardex.MovementInput) { in.Item = kardex.MateriaPrimaRef("MP999999") }, domain.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := entradaInput("10", "1.00")
			tc.mutate(&in)
			_, err := f.uc.RecordMovement(ctx, in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	assert.Empty(t, f.kardexRepo.entries, "ningún input inválido debe generar asientos")
}

// TestCurrentBalance_SinHistorial devuelve saldo cero, no error.
func TestCurrentBalance_SinHistorial(t *testing.T) {
	f := newFixture()

	balance, err := f.uc.CurrentBalance(context.Background(), "wh-1", kardex.MateriaPrimaRef("MP000001"))
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

// TestHistory_OrdenYLimite el historial sale en orden de registro y respeta
// el límite por defecto.
func TestHistory_OrdenYLimite(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.uc.RecordMovement(ctx, entradaInput("1", "2.00"))
		require.NoError(t, err)
	}

	entries, err := f.uc.History(ctx, "wh-1", kardex.MateriaPrimaRef("MP000001"), nil, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].Seq, entries[i-1].Seq, "secuencia estrictamente creciente")
	}

	limited, err := f.uc.History(ctx, "wh-1", kardex.MateriaPrimaRef("MP000001"), nil, nil, 2, 1)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, entries[1].ID, limited[0].ID)
}

// loggingStockRepo y loggingKardexRepo anotan el orden de las operaciones de
// la transacción en un registro compartido.
type callLog struct {
	calls []string
}

type loggingStockRepo struct {
	*fakeStockRepo
	log *callLog
}

func (r *loggingStockRepo) GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	r.log.calls = append(r.log.calls, "stock.GetForUpdate")
	return r.fakeStockRepo.GetForUpdate(ref, warehouseID)
}

type loggingKardexRepo struct {
	*fakeKardexRepo
	log *callLog
}

func (r *loggingKardexRepo) LatestForUpdate(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	r.log.calls = append(r.log.calls, "kardex.LatestForUpdate")
	return r.fakeKardexRepo.LatestForUpdate(warehouseID, ref)
}

func (r *loggingKardexRepo) Append(entry *entity.KardexEntry) error {
	r.log.calls = append(r.log.calls, "kardex.Append")
	return r.fakeKardexRepo.Append(entry)
}

// TestRecordInTx_LockDeStockPrecedeALaLectura el primer movimiento de una
// clave no tiene asiento previo que bloquear: la fila de stock es el punto de
// serialización y debe bloquearse ANTES de leer el último asiento, o dos
// primeros movimientos concurrentes armarían cadenas de saldo divergentes.
func TestRecordInTx_LockDeStockPrecedeALaLectura(t *testing.T) {
	f := newFixture()
	log := &callLog{}
	stockRepo := &loggingStockRepo{fakeStockRepo: f.stockRepo, log: log}
	kardexRepo := &loggingKardexRepo{fakeKardexRepo: f.kardexRepo, log: log}

	_, err := f.uc.RecordInTx(kardexRepo, stockRepo, f.materialRepo, f.productRepo, entradaInput("10", "5.00"), time.Now())
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(log.calls), 3)
	assert.Equal(t, "stock.GetForUpdate", log.calls[0], "el lock de stock va primero")
	assert.Equal(t, "kardex.LatestForUpdate", log.calls[1])
	assert.Equal(t, "kardex.Append", log.calls[2])
}

// TestRecordMovement_ProductoAjustaContador las entradas de producto terminado
// actualizan su contador cacheado pero no tocan costo promedio de materias.
func TestRecordMovement_ProductoAjustaContador(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := appkardex.MovementInput{
		WarehouseID: "wh-1",
		Item:        kardex.ProductoRef("prod-1"),
		Type:        entity.MovementEntrada,
		Reason:      entity.ReasonProduccion,
		Quantity:    dec("40"),
		UnitCost:    dec("7.2500"),
		RecordedBy:  "tester",
	}
	entry, err := f.uc.RecordMovement(ctx, in)
	require.NoError(t, err)

	assert.True(t, entry.BalanceAvgCost.Equal(dec("7.2500")))
	product, _ := f.productRepo.GetByID("prod-1")
	assert.True(t, product.Stock.Equal(dec("40")))
}
