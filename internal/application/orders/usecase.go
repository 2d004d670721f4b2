package orders

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

// OrderUseCase gestiona órdenes de venta. Los totales de la orden son
// derivados: cada alta, edición o baja de línea los recalcula desde cero, así
// recalcular dos veces seguidas da siempre el mismo resultado.
type OrderUseCase struct {
	txRunner    TxRunner
	recorder    *appkardex.RecordMovementUseCase
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	clientRepo  repository.ClientRepository
}

// NewOrderUseCase construye el caso de uso.
func NewOrderUseCase(
	txRunner TxRunner,
	recorder *appkardex.RecordMovementUseCase,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	clientRepo repository.ClientRepository,
) *OrderUseCase {
	return &OrderUseCase{
		txRunner:    txRunner,
		recorder:    recorder,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		clientRepo:  clientRepo,
	}
}

// OrderInput entrada para crear una orden de venta.
type OrderInput struct {
	OrderCode   string
	ClientID    string
	WarehouseID string
	OrderDate   time.Time
	TaxRate     decimal.Decimal
	Notes       string
}

// ItemInput entrada para una línea de la orden. UnitPrice en cero toma el
// precio de lista del producto.
type ItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CreateOrder crea la orden en estado pending con totales en cero.
func (uc *OrderUseCase) CreateOrder(ctx context.Context, input OrderInput) (*entity.SalesOrder, error) {
	if input.ClientID == "" || input.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.TaxRate.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clientRepo.GetByID(input.ClientID)
	if err != nil || client == nil {
		return nil, domain.ErrNotFound
	}

	now := time.Now()
	order := &entity.SalesOrder{
		ID:          uuid.New().String(),
		OrderCode:   input.OrderCode,
		ClientID:    input.ClientID,
		WarehouseID: input.WarehouseID,
		OrderDate:   input.OrderDate,
		Status:      entity.OrderPending,
		TaxRate:     input.TaxRate,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.orderRepo.Create(order); err != nil {
		return nil, err
	}
	return order, nil
}

// AddItem agrega una línea a una orden abierta y recalcula los totales.
func (uc *OrderUseCase) AddItem(ctx context.Context, orderID string, input ItemInput) (*entity.OrderItem, error) {
	if !input.Quantity.GreaterThan(decimal.Zero) || input.UnitPrice.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.getOpenOrder(orderID)
	if err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(input.ProductID)
	if err != nil || product == nil {
		return nil, domain.ErrNotFound
	}

	price := input.UnitPrice
	if price.IsZero() {
		price = product.Price
	}
	now := time.Now()
	item := &entity.OrderItem{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		UnitPrice: price,
		Subtotal:  input.Quantity.Mul(price).Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.orderRepo.AddItem(item); err != nil {
		return nil, err
	}
	if err := uc.RecalculateTotals(ctx, order.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem cambia cantidad o precio de una línea y recalcula los totales.
func (uc *OrderUseCase) UpdateItem(ctx context.Context, orderID, itemID string, input ItemInput) error {
	if !input.Quantity.GreaterThan(decimal.Zero) || input.UnitPrice.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	order, err := uc.getOpenOrder(orderID)
	if err != nil {
		return err
	}
	items, err := uc.orderRepo.ListItems(order.ID)
	if err != nil {
		return err
	}
	var item *entity.OrderItem
	for _, it := range items {
		if it.ID == itemID {
			item = it
			break
		}
	}
	if item == nil {
		return domain.ErrNotFound
	}
	item.Quantity = input.Quantity
	if !input.UnitPrice.IsZero() {
		item.UnitPrice = input.UnitPrice
	}
	item.Subtotal = item.Quantity.Mul(item.UnitPrice).Round(2)
	item.UpdatedAt = time.Now()
	if err := uc.orderRepo.UpdateItem(item); err != nil {
		return err
	}
	return uc.RecalculateTotals(ctx, order.ID)
}

// RemoveItem quita una línea de una orden abierta y recalcula los totales.
func (uc *OrderUseCase) RemoveItem(ctx context.Context, orderID, itemID string) error {
	order, err := uc.getOpenOrder(orderID)
	if err != nil {
		return err
	}
	if err := uc.orderRepo.DeleteItem(itemID); err != nil {
		return err
	}
	return uc.RecalculateTotals(ctx, order.ID)
}

// RecalculateTotals recalcula subtotal, impuesto y total desde las líneas.
// Es idempotente: sin cambios en las líneas produce siempre los mismos montos.
func (uc *OrderUseCase) RecalculateTotals(ctx context.Context, orderID string) error {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return err
	}
	items, err := uc.orderRepo.ListItems(order.ID)
	if err != nil {
		return err
	}
	applyTotals(order, items)
	order.UpdatedAt = time.Now()
	return uc.orderRepo.Update(order)
}

// applyTotals: subtotal = Σ líneas, impuesto = round(subtotal × tasa / 100, 2).
func applyTotals(order *entity.SalesOrder, items []*entity.OrderItem) {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Subtotal)
	}
	order.ItemsSubtotal = subtotal
	order.TaxAmount = subtotal.Mul(order.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	order.Total = subtotal.Add(order.TaxAmount)
}

// Confirm pasa la orden de pending a confirmed.
func (uc *OrderUseCase) Confirm(ctx context.Context, orderID string) (*entity.SalesOrder, error) {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != entity.OrderPending {
		return nil, domain.ErrInvalidTransition
	}
	order.Status = entity.OrderConfirmed
	order.UpdatedAt = time.Now()
	if err := uc.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// Complete despacha la orden: valida stock de TODAS las líneas, registra una
// SALIDA/VENTA por producto y deja la orden en completed, todo en una
// transacción. El costo de cada salida lo fija el promedio vigente del
// producto: aquí solo se define qué sale, no a cuánto.
func (uc *OrderUseCase) Complete(ctx context.Context, orderID, actor string) (*entity.SalesOrder, error) {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case entity.OrderCompleted:
		return nil, domain.ErrAlreadyCompleted
	case entity.OrderCancelled:
		return nil, domain.ErrInvalidTransition
	}

	now := time.Now()
	err = uc.txRunner.RunOrders(ctx, func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error {
		// Relectura con bloqueo de fila: el estado chequeado afuera pudo
		// cambiar; solo el primer despacho concurrente en tomar el lock
		// avanza, el resto aborta aquí.
		locked, err := orderRepo.GetByIDForUpdate(order.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		switch locked.Status {
		case entity.OrderCompleted:
			return domain.ErrAlreadyCompleted
		case entity.OrderCancelled:
			return domain.ErrInvalidTransition
		}
		order = locked

		items, err := orderRepo.ListItems(order.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyOrder
		}

		for _, item := range items {
			ref := kardex.ProductoRef(item.ProductID)
			balance, err := uc.recorder.CurrentBalanceInTx(kardexRepo, order.WarehouseID, ref)
			if err != nil {
				return err
			}
			if balance.Quantity.LessThan(item.Quantity) {
				product, perr := productRepo.GetByID(item.ProductID)
				name := item.ProductID
				if perr == nil && product != nil {
					name = product.Name
				}
				return &domain.InsufficientStockError{
					MaterialID: item.ProductID,
					Material:   name,
					Required:   item.Quantity,
					Available:  balance.Quantity,
				}
			}
		}

		for _, item := range items {
			balance, err := uc.recorder.CurrentBalanceInTx(kardexRepo, order.WarehouseID, kardex.ProductoRef(item.ProductID))
			if err != nil {
				return err
			}
			if _, err := uc.recorder.RecordInTx(kardexRepo, stockRepo, materialRepo, productRepo, appkardex.MovementInput{
				WarehouseID: order.WarehouseID,
				Item:        kardex.ProductoRef(item.ProductID),
				Type:        entity.MovementSalida,
				Reason:      entity.ReasonVenta,
				Quantity:    item.Quantity,
				UnitCost:    balance.AvgCost,
				ReferenceID: order.OrderCode,
				Notes:       "Despacho de la orden " + order.OrderCode,
				RecordedBy:  actor,
			}, now); err != nil {
				return err
			}
		}

		order.Status = entity.OrderCompleted
		order.UpdatedAt = now
		return orderRepo.Update(order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel anula una orden no despachada sin tocar inventario.
func (uc *OrderUseCase) Cancel(ctx context.Context, orderID string) (*entity.SalesOrder, error) {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case entity.OrderCompleted:
		return nil, domain.ErrAlreadyCompleted
	case entity.OrderCancelled:
		return nil, domain.ErrInvalidTransition
	}
	order.Status = entity.OrderCancelled
	order.UpdatedAt = time.Now()
	if err := uc.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder devuelve la orden con sus líneas.
func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (*entity.SalesOrder, []*entity.OrderItem, error) {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return nil, nil, err
	}
	items, err := uc.orderRepo.ListItems(order.ID)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// ListOrders lista órdenes filtrando por estado y/o cliente.
func (uc *OrderUseCase) ListOrders(ctx context.Context, status, clientID string, limit, offset int) ([]*entity.SalesOrder, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.orderRepo.List(status, clientID, limit, offset)
}

func (uc *OrderUseCase) getOrder(orderID string) (*entity.SalesOrder, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

func (uc *OrderUseCase) getOpenOrder(orderID string) (*entity.SalesOrder, error) {
	order, err := uc.getOrder(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == entity.OrderCompleted || order.Status == entity.OrderCancelled {
		return nil, domain.ErrInvalidTransition
	}
	return order, nil
}
