package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de órdenes de venta. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_code, client_id, warehouse_id, order_date, status,
		tax_rate, items_subtotal, tax_amount, total, notes, created_at, updated_at`

// Create persiste una orden. Si order_code viene vacío genera el siguiente
// OVnnnnnn desde la secuencia sales_order_seq.
func (r *OrderRepo) Create(order *entity.SalesOrder) error {
	ctx := context.Background()
	if order.OrderCode == "" {
		var n int64
		if err := r.q.QueryRow(ctx, `SELECT nextval('sales_order_seq')`).Scan(&n); err != nil {
			return fmt.Errorf("next order code: %w", err)
		}
		order.OrderCode = fmt.Sprintf("OV%06d", n)
	}
	query := `
		INSERT INTO sales_orders (id, order_code, client_id, warehouse_id, order_date, status,
			tax_rate, items_subtotal, tax_amount, total, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, 0, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.OrderCode, order.ClientID, order.WarehouseID, order.OrderDate, order.Status,
		order.TaxRate, order.Notes, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert sales order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID.
func (r *OrderRepo) GetByID(id string) (*entity.SalesOrder, error) {
	return r.getBy(`WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene una orden bloqueando su fila (SELECT FOR UPDATE):
// serializa los despachos concurrentes de la misma orden.
func (r *OrderRepo) GetByIDForUpdate(id string) (*entity.SalesOrder, error) {
	return r.getBy(`WHERE id = $1 FOR UPDATE`, id)
}

// GetByCode obtiene una orden por código.
func (r *OrderRepo) GetByCode(code string) (*entity.SalesOrder, error) {
	return r.getBy(`WHERE order_code = $1`, code)
}

func (r *OrderRepo) getBy(where, arg string) (*entity.SalesOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM sales_orders ` + where
	var o entity.SalesOrder
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&o.ID, &o.OrderCode, &o.ClientID, &o.WarehouseID, &o.OrderDate, &o.Status,
		&o.TaxRate, &o.ItemsSubtotal, &o.TaxAmount, &o.Total, &o.Notes,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sales order: %w", err)
	}
	return &o, nil
}

// List lista órdenes filtrando por estado y/o cliente.
func (r *OrderRepo) List(status, clientID string, limit, offset int) ([]*entity.SalesOrder, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM sales_orders
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR client_id = $2)
		ORDER BY order_date DESC, order_code DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, status, clientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sales orders: %w", err)
	}
	defer rows.Close()
	var out []*entity.SalesOrder
	for rows.Next() {
		var o entity.SalesOrder
		if err := rows.Scan(
			&o.ID, &o.OrderCode, &o.ClientID, &o.WarehouseID, &o.OrderDate, &o.Status,
			&o.TaxRate, &o.ItemsSubtotal, &o.TaxAmount, &o.Total, &o.Notes,
			&o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan sales order: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// Update actualiza estado, totales y notas de una orden.
func (r *OrderRepo) Update(order *entity.SalesOrder) error {
	query := `
		UPDATE sales_orders
		SET status = $2, tax_rate = $3, items_subtotal = $4, tax_amount = $5, total = $6,
		    notes = $7, updated_at = $8
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		order.ID, order.Status, order.TaxRate, order.ItemsSubtotal, order.TaxAmount, order.Total,
		order.Notes, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update sales order: %w", err)
	}
	return nil
}

// AddItem inserta una línea de la orden.
func (r *OrderRepo) AddItem(item *entity.OrderItem) error {
	query := `
		INSERT INTO sales_order_items (id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert order item: %w", err)
	}
	return nil
}

// UpdateItem actualiza cantidad, precio y subtotal de una línea.
func (r *OrderRepo) UpdateItem(item *entity.OrderItem) error {
	query := `
		UPDATE sales_order_items
		SET quantity = $2, unit_price = $3, subtotal = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Quantity, item.UnitPrice, item.Subtotal, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	return nil
}

// DeleteItem elimina una línea por ID.
func (r *OrderRepo) DeleteItem(itemID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM sales_order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete order item: %w", err)
	}
	return nil
}

// ListItems lista las líneas de una orden en orden de creación.
func (r *OrderRepo) ListItems(orderID string) ([]*entity.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, quantity, unit_price, subtotal, created_at, updated_at
		FROM sales_order_items WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()
	var out []*entity.OrderItem
	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal,
			&it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
