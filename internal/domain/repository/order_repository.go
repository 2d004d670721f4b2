package repository

import "github.com/innoquim/erp-backend/internal/domain/entity"

// OrderRepository define el puerto de persistencia de órdenes de venta.
type OrderRepository interface {
	Create(order *entity.SalesOrder) error
	GetByID(id string) (*entity.SalesOrder, error)
	// GetByIDForUpdate bloquea la fila de la orden (SELECT FOR UPDATE) para
	// revalidar su estado dentro de una transacción de despacho.
	GetByIDForUpdate(id string) (*entity.SalesOrder, error)
	GetByCode(code string) (*entity.SalesOrder, error)
	List(status, clientID string, limit, offset int) ([]*entity.SalesOrder, error)
	Update(order *entity.SalesOrder) error

	AddItem(item *entity.OrderItem) error
	UpdateItem(item *entity.OrderItem) error
	DeleteItem(itemID string) error
	ListItems(orderID string) ([]*entity.OrderItem, error)
}
