package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un ítem en una bodega.
func (r *StockRepo) Get(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	query := `
		SELECT item_type, item_id, warehouse_id, quantity, updated_at
		FROM stock WHERE item_type = $1 AND item_id = $2 AND warehouse_id = $3`
	var s entity.Stock
	err := r.q.QueryRow(context.Background(), query, string(ref.Kind), ref.ID, warehouseID).Scan(
		&s.ItemType, &s.ItemID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.Stock{ItemType: string(ref.Kind), ItemID: ref.ID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// GetForUpdate obtiene el stock bloqueando la fila (SELECT FOR UPDATE). Si la
// clave nunca tuvo movimientos, primero inserta la fila en cero: sin fila no
// habría nada que bloquear y dos primeros movimientos concurrentes de la misma
// clave podrían armar cadenas de saldo divergentes.
func (r *StockRepo) GetForUpdate(ref kardex.ItemRef, warehouseID string) (*entity.Stock, error) {
	ctx := context.Background()
	ensure := `
		INSERT INTO stock (item_type, item_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, 0, now())
		ON CONFLICT (item_type, item_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, string(ref.Kind), ref.ID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `
		SELECT item_type, item_id, warehouse_id, quantity, updated_at
		FROM stock WHERE item_type = $1 AND item_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	var s entity.Stock
	err := r.q.QueryRow(ctx, query, string(ref.Kind), ref.ID, warehouseID).Scan(
		&s.ItemType, &s.ItemID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por ítem y bodega).
func (r *StockRepo) Upsert(stock *entity.Stock) error {
	query := `
		INSERT INTO stock (item_type, item_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (item_type, item_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, stock.ItemType, stock.ItemID, stock.WarehouseID, stock.Quantity)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByWarehouse lista el snapshot de stock de una bodega.
func (r *StockRepo) ListByWarehouse(warehouseID string) ([]*entity.Stock, error) {
	query := `
		SELECT item_type, item_id, warehouse_id, quantity, updated_at
		FROM stock WHERE warehouse_id = $1 ORDER BY item_type, item_id`
	rows, err := r.q.Query(context.Background(), query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var out []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ItemType, &s.ItemID, &s.WarehouseID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
