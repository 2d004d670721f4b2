package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo implementación de KardexRepository sobre PostgreSQL (usable con pool o tx).
// La tabla kardex_entries es solo-inserción; seq es BIGSERIAL y desempata
// asientos con la misma fecha.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador del Kardex. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const kardexColumns = `id, seq, fecha, item_type, item_id, warehouse_id,
		movement_type, reason, quantity, unit_cost, total_cost,
		balance_quantity, balance_total_cost, balance_avg_cost,
		reference_id, notes, recorded_by, created_at`

// Append inserta un asiento nuevo y recupera el seq asignado por la secuencia.
func (r *KardexRepo) Append(entry *entity.KardexEntry) error {
	query := `
		INSERT INTO kardex_entries (id, fecha, item_type, item_id, warehouse_id,
			movement_type, reason, quantity, unit_cost, total_cost,
			balance_quantity, balance_total_cost, balance_avg_cost,
			reference_id, notes, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING seq`
	err := r.q.QueryRow(context.Background(), query,
		entry.ID, entry.Fecha, entry.ItemType, entry.ItemID, entry.WarehouseID,
		entry.MovementType, entry.Reason, entry.Quantity, entry.UnitCost, entry.TotalCost,
		entry.BalanceQuantity, entry.BalanceTotalCost, entry.BalanceAvgCost,
		entry.ReferenceID, entry.Notes, entry.RecordedBy, entry.CreatedAt,
	).Scan(&entry.Seq)
	if err != nil {
		return fmt.Errorf("insert kardex entry: %w", err)
	}
	return nil
}

// Latest devuelve el asiento más reciente de (almacén, ítem), o nil sin historial.
func (r *KardexRepo) Latest(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	query := `
		SELECT ` + kardexColumns + `
		FROM kardex_entries
		WHERE warehouse_id = $1 AND item_type = $2 AND item_id = $3
		ORDER BY fecha DESC, seq DESC
		LIMIT 1`
	return r.scanOne(query, warehouseID, string(ref.Kind), ref.ID)
}

// LatestForUpdate hace lo mismo bloqueando la fila: los escritores concurrentes
// de la misma clave esperan aquí hasta el commit del primero.
func (r *KardexRepo) LatestForUpdate(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error) {
	query := `
		SELECT ` + kardexColumns + `
		FROM kardex_entries
		WHERE warehouse_id = $1 AND item_type = $2 AND item_id = $3
		ORDER BY fecha DESC, seq DESC
		LIMIT 1
		FOR UPDATE`
	return r.scanOne(query, warehouseID, string(ref.Kind), ref.ID)
}

// History lista asientos de (almacén, ítem) ascendente por (fecha, seq).
func (r *KardexRepo) History(warehouseID string, ref kardex.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	query := `
		SELECT ` + kardexColumns + `
		FROM kardex_entries
		WHERE warehouse_id = $1 AND item_type = $2 AND item_id = $3
		  AND ($4::timestamptz IS NULL OR fecha >= $4)
		  AND ($5::timestamptz IS NULL OR fecha <= $5)
		ORDER BY fecha ASC, seq ASC
		LIMIT $6 OFFSET $7`
	rows, err := r.q.Query(context.Background(), query,
		warehouseID, string(ref.Kind), ref.ID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list kardex history: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListByWarehouse lista los movimientos de un almacén completo (reportes).
func (r *KardexRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error) {
	query := `
		SELECT ` + kardexColumns + `
		FROM kardex_entries
		WHERE warehouse_id = $1
		  AND ($2::timestamptz IS NULL OR fecha >= $2)
		  AND ($3::timestamptz IS NULL OR fecha <= $3)
		ORDER BY fecha ASC, seq ASC
		LIMIT $4 OFFSET $5`
	rows, err := r.q.Query(context.Background(), query, warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list kardex by warehouse: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *KardexRepo) scanOne(query string, args ...any) (*entity.KardexEntry, error) {
	var e entity.KardexEntry
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&e.ID, &e.Seq, &e.Fecha, &e.ItemType, &e.ItemID, &e.WarehouseID,
		&e.MovementType, &e.Reason, &e.Quantity, &e.UnitCost, &e.TotalCost,
		&e.BalanceQuantity, &e.BalanceTotalCost, &e.BalanceAvgCost,
		&e.ReferenceID, &e.Notes, &e.RecordedBy, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get kardex entry: %w", err)
	}
	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]*entity.KardexEntry, error) {
	var out []*entity.KardexEntry
	for rows.Next() {
		var e entity.KardexEntry
		if err := rows.Scan(
			&e.ID, &e.Seq, &e.Fecha, &e.ItemType, &e.ItemID, &e.WarehouseID,
			&e.MovementType, &e.Reason, &e.Quantity, &e.UnitCost, &e.TotalCost,
			&e.BalanceQuantity, &e.BalanceTotalCost, &e.BalanceAvgCost,
			&e.ReferenceID, &e.Notes, &e.RecordedBy, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan kardex entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
