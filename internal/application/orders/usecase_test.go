package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appkardex "github.com/innoquim/erp-backend/internal/application/kardex"
	"github.com/innoquim/erp-backend/internal/application/orders"
	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria, mismos contratos que los repos Postgres.
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
	return r.entries, nil
}

func (r *fakeKardexRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	return r.entries, nil
}

type fakeStockRepo struct {
	rows map[string]*entity.Stock
}

func (r *fakeStockRepo) key(itemType, itemID, warehouseID string) string {
	return itemType + "|" + itemID + "|" + warehouseID
}

func (r *fakeStockRepo) Get(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	return r.rows[r.key(string(ref.Kind), ref.ID, warehouseID)], nil
}

func (r *fakeStockRepo) GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.rows[r.key(string(ref.Kind), ref.ID, warehouseID)]; ok {
		return s, nil
	}
	return &entity.Stock{ItemType: string(ref.Kind), ItemID: ref.ID, WarehouseID: warehouseID}, nil
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	r.rows[r.key(stock.ItemType, stock.ItemID, stock.WarehouseID)] = stock
	return nil
}

func (r *fakeStockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	return nil, nil
}

type fakeMaterialRepo struct{}

func (r *fakeMaterialRepo) Create(*entity.RawMaterial) error                     { return nil }
func (r *fakeMaterialRepo) GetByID(string) (*entity.RawMaterial, error)          { return nil, nil }
func (r *fakeMaterialRepo) GetByCode(string) (*entity.RawMaterial, error)        { return nil, nil }
func (r *fakeMaterialRepo) List(string, int, int) ([]*entity.RawMaterial, error) { return nil, nil }
func (r *fakeMaterialRepo) Update(*entity.RawMaterial) error                     { return nil }
func (r *fakeMaterialRepo) UpdateAverageCost(string, decimal.Decimal) error      { return nil }
func (r *fakeMaterialRepo) AdjustStock(string, decimal.Decimal) error            { return nil }

type fakeProductRepo struct {
	rows map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.rows[p.ID] = p; return nil }
func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.rows[id], nil
}
func (r *fakeProductRepo) GetByCode(string) (*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Update(p *entity.Product) error            { r.rows[p.ID] = p; return nil }
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
func (r *fakeProductRepo) List(string, int, int) ([]*entity.Product, error) { return nil, nil }
func (r *fakeProductRepo) Delete(id string) error                           { delete(r.rows, id); return nil }

type fakeClientRepo struct {
	rows map[string]*entity.Client
}

func (r *fakeClientRepo) Create(c *entity.Client) error { r.rows[c.ID] = c; return nil }
func (r *fakeClientRepo) GetByID(id string) (*entity.Client, error) {
	return r.rows[id], nil
}
func (r *fakeClientRepo) List(string, int, int) ([]*entity.Client, error) { return nil, nil }
func (r *fakeClientRepo) Update(c *entity.Client) error                   { r.rows[c.ID] = c; return nil }
func (r *fakeClientRepo) Delete(id string) error                          { delete(r.rows, id); return nil }

type fakeWarehouseRepo struct{}

func (r *fakeWarehouseRepo) Create(*entity.Warehouse) error { return nil }
func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	return &entity.Warehouse{ID: id}, nil
}
func (r *fakeWarehouseRepo) Update(*entity.Warehouse) error             { return nil }
func (r *fakeWarehouseRepo) List(int, int) ([]*entity.Warehouse, error) { return nil, nil }
func (r *fakeWarehouseRepo) Delete(string) error                        { return nil }

type fakeOrderRepo struct {
	orders map[string]*entity.SalesOrder
	items  []*entity.OrderItem
	code   int

	// onGetForUpdate simula escrituras de una transacción rival que commitea
	// justo antes de que el despacho tome el lock de la fila.
	onGetForUpdate func(*entity.SalesOrder)
}

func (r *fakeOrderRepo) Create(o *entity.SalesOrder) error {
	if o.OrderCode == "" {
		r.code++
		o.OrderCode = "OV000001"
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	return r.orders[id], nil
}

func (r *fakeOrderRepo) GetByIDForUpdate(id string) (*entity.SalesOrder, error) {
	o := r.orders[id]
	if o != nil && r.onGetForUpdate != nil {
		r.onGetForUpdate(o)
	}
	return o, nil
}

func (r *fakeOrderRepo) GetByCode(code string) (*entity.SalesOrder, error) {
	for _, o := range r.orders {
		if o.OrderCode == code {
			return o, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) List(status, clientID string, limit, offset int) ([]*entity.SalesOrder, error) {
	var out []*entity.SalesOrder
	for _, o := range r.orders {
		if status != "" && o.Status != status {
			continue
		}
		if clientID != "" && o.ClientID != clientID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOrderRepo) Update(o *entity.SalesOrder) error { r.orders[o.ID] = o; return nil }

func (r *fakeOrderRepo) AddItem(item *entity.OrderItem) error {
	r.items = append(r.items, item)
	return nil
}

func (r *fakeOrderRepo) UpdateItem(item *entity.OrderItem) error {
	for i, it := range r.items {
		if it.ID == item.ID {
			r.items[i] = item
		}
	}
	return nil
}

func (r *fakeOrderRepo) DeleteItem(itemID string) error {
	out := r.items[:0]
	for _, it := range r.items {
		if it.ID != itemID {
			out = append(out, it)
		}
	}
	r.items = out
	return nil
}

func (r *fakeOrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	var out []*entity.OrderItem
	for _, it := range r.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

type fakeOrdersRunner struct {
	kardexRepo   repository.KardexRepository
	stockRepo    repository.StockRepository
	materialRepo repository.RawMaterialRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
}

func (r *fakeOrdersRunner) RunOrders(ctx context.Context, fn func(
	kardexRepo repository.KardexRepository,
	stockRepo repository.StockRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	return fn(r.kardexRepo, r.stockRepo, r.materialRepo, r.productRepo, r.orderRepo)
}

// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc          *orders.OrderUseCase
	recorder    *appkardex.RecordMovementUseCase
	kardexRepo  *fakeKardexRepo
	productRepo *fakeProductRepo
	orderRepo   *fakeOrderRepo
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
	materialRepo := &fakeMaterialRepo{}
	productRepo := &fakeProductRepo{rows: map[string]*entity.Product{
		"prod-1": {ID: "prod-1", Name: "Desengrasante Industrial 20L", Price: dec("45.00"), TaxRate: dec("19")},
	}}
	clientRepo := &fakeClientRepo{rows: map[string]*entity.Client{
		"cli-1": {ID: "cli-1", Name: "Distribuidora Norte"},
	}}
	orderRepo := &fakeOrderRepo{orders: make(map[string]*entity.SalesOrder)}

	recorder := appkardex.NewRecordMovementUseCase(nil, kardexRepo, materialRepo, productRepo, &fakeWarehouseRepo{})
	runner := &fakeOrdersRunner{
		kardexRepo:   kardexRepo,
		stockRepo:    stockRepo,
		materialRepo: materialRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
	}
	return &fixture{
		uc:          orders.NewOrderUseCase(runner, recorder, orderRepo, productRepo, clientRepo),
		recorder:    recorder,
		kardexRepo:  kardexRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// seedProductStock deja saldo del producto en el almacén vía una ENTRADA de
// producción.
func (f *fixture) seedProductStock(t *testing.T, qty, cost string) {
	t.Helper()
	_, err := f.recorder.RecordInTx(f.kardexRepo, &fakeStockRepo{rows: make(map[string]*entity.Stock)}, &fakeMaterialRepo{}, f.productRepo, appkardex.MovementInput{
		WarehouseID: "wh-1",
		Item:        kardex.ProductoRef("prod-1"),
		Type:        entity.MovementEntrada,
		Reason:      entity.ReasonProduccion,
		Quantity:    dec(qty),
		UnitCost:    dec(cost),
		RecordedBy:  "seed",
	}, time.Now())
	require.NoError(t, err)
}

func (f *fixture) newOrder(t *testing.T) *entity.SalesOrder {
	t.Helper()
	order, err := f.uc.CreateOrder(context.Background(), orders.OrderInput{
		ClientID:    "cli-1",
		WarehouseID: "wh-1",
		OrderDate:   time.Now(),
		TaxRate:     dec("19"),
	})
	require.NoError(t, err)
	return order
}

// TestTotales_Recalculo subtotal, impuesto y total se derivan de las líneas
// con redondeo a 2 decimales sobre el impuesto.
func TestTotales_Recalculo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.newOrder(t)

	_, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("3"), UnitPrice: dec("45.50")})
	require.NoError(t, err)
	_, err = f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("1"), UnitPrice: dec("10.01")})
	require.NoError(t, err)

	stored, _ := f.orderRepo.GetByID(order.ID)
	assert.True(t, stored.ItemsSubtotal.Equal(dec("146.51")), "136.50 + 10.01")
	assert.True(t, stored.TaxAmount.Equal(dec("27.84")), "round(146.51 × 19%, 2)")
	assert.True(t, stored.Total.Equal(dec("174.35")))
}

// TestTotales_Idempotente recalcular sin cambiar líneas no mueve los montos.
func TestTotales_Idempotente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	order := f.newOrder(t)

	_, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("3"), UnitPrice: dec("45.50")})
	require.NoError(t, err)

	first, _ := f.orderRepo.GetByID(order.ID)
	subtotal, tax, total := first.ItemsSubtotal, first.TaxAmount, first.Total

	require.NoError(t, f.uc.RecalculateTotals(ctx, order.ID))
	require.NoError(t, f.uc.RecalculateTotals(ctx, order.ID))

	again, _ := f.orderRepo.GetByID(order.ID)
	assert.True(t, again.ItemsSubtotal.Equal(subtotal))
	assert.True(t, again.TaxAmount.Equal(tax))
	assert.True(t, again.Total.Equal(total))
}

// TestTotales_PrecioDeLista una línea sin precio explícito toma el precio de
// lista del producto.
func TestTotales_PrecioDeLista(t *testing.T) {
	f := newFixture()
	order := f.newOrder(t)

	item, err := f.uc.AddItem(context.Background(), order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("2")})
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(dec("45.00")))
	assert.True(t, item.Subtotal.Equal(dec("90.00")))
}

// TestComplete_DespachaAlPromedio el despacho registra una SALIDA/VENTA por
// línea valorada al costo promedio del producto, no al precio de venta.
func TestComplete_DespachaAlPromedio(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedProductStock(t, "50", "6.0000")
	order := f.newOrder(t)
	_, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("20"), UnitPrice: dec("45.00")})
	require.NoError(t, err)

	completed, err := f.uc.Complete(ctx, order.ID, "vendedor")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderCompleted, completed.Status)

	salida, err := f.kardexRepo.Latest("wh-1", kardex.ProductoRef("prod-1"))
	require.NoError(t, err)
	assert.Equal(t, entity.MovementSalida, salida.MovementType)
	assert.Equal(t, entity.ReasonVenta, salida.Reason)
	assert.True(t, salida.UnitCost.Equal(dec("6.0000")), "valorada al promedio, no al precio")
	assert.True(t, salida.BalanceQuantity.Equal(dec("30")))
	assert.Equal(t, completed.OrderCode, salida.ReferenceID)

	product := f.productRepo.rows["prod-1"]
	assert.True(t, product.Stock.Equal(dec("30")))
}

// TestComplete_StockInsuficiente sin saldo suficiente el despacho no escribe
// nada y la orden sigue abierta.
func TestComplete_StockInsuficiente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedProductStock(t, "5", "6.0000")
	order := f.newOrder(t)
	_, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("20"), UnitPrice: dec("45.00")})
	require.NoError(t, err)

	entriesBefore := len(f.kardexRepo.entries)
	_, err = f.uc.Complete(ctx, order.ID, "vendedor")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Len(t, f.kardexRepo.entries, entriesBefore)
	stored, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, entity.OrderPending, stored.Status)
}

// TestComplete_OrdenVacia no se despacha una orden sin líneas.
func TestComplete_OrdenVacia(t *testing.T) {
	f := newFixture()
	order := f.newOrder(t)

	_, err := f.uc.Complete(context.Background(), order.ID, "vendedor")
	assert.ErrorIs(t, err, domain.ErrEmptyOrder)
}

// TestComplete_DespachoConcurrenteAbortaElSegundo el estado de la orden se
// relee con bloqueo de fila dentro de la transacción: si otro despacho ganó
// entre el chequeo externo y el lock, el perdedor aborta sin registrar salidas.
func TestComplete_DespachoConcurrenteAbortaElSegundo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedProductStock(t, "50", "6.0000")
	order := f.newOrder(t)
	_, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("20"), UnitPrice: dec("45.00")})
	require.NoError(t, err)

	// Despacho rival que commitea justo antes de que este tome el lock.
	f.orderRepo.onGetForUpdate = func(o *entity.SalesOrder) {
		o.Status = entity.OrderCompleted
	}

	entriesBefore := len(f.kardexRepo.entries)
	_, err = f.uc.Complete(ctx, order.ID, "vendedor")

	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.Len(t, f.kardexRepo.entries, entriesBefore, "el perdedor no registra salidas")
}

// TestEstados_Terminales completed y cancelled son terminales; las líneas de
// una orden cerrada no se tocan.
func TestEstados_Terminales(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.seedProductStock(t, "50", "6.0000")
	order := f.newOrder(t)
	item, err := f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("10"), UnitPrice: dec("45.00")})
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, order.ID, "vendedor")
	require.NoError(t, err)

	_, err = f.uc.Complete(ctx, order.ID, "vendedor")
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	_, err = f.uc.Cancel(ctx, order.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	_, err = f.uc.AddItem(ctx, order.ID, orders.ItemInput{ProductID: "prod-1", Quantity: dec("1"), UnitPrice: dec("45.00")})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = f.uc.RemoveItem(ctx, order.ID, item.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Una orden cancelada tampoco se despacha.
	other := f.newOrder(t)
	_, err = f.uc.Cancel(ctx, other.ID)
	require.NoError(t, err)
	_, err = f.uc.Complete(ctx, other.ID, "vendedor")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
