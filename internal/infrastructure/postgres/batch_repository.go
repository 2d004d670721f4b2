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

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación de BatchRepository sobre PostgreSQL (usable con pool o tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes de producción. Pasar pool o tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, batch_code, product_id, warehouse_id, production_date,
		planned_quantity, unit_id, status, manager_id,
		material_cost_total, unit_cost, completed_at, created_at, updated_at`

// Create persiste un lote. Si batch_code viene vacío genera el siguiente
// LPnnnnnn desde la secuencia production_batch_seq.
func (r *BatchRepo) Create(batch *entity.ProductionBatch) error {
	ctx := context.Background()
	if batch.BatchCode == "" {
		var n int64
		if err := r.q.QueryRow(ctx, `SELECT nextval('production_batch_seq')`).Scan(&n); err != nil {
			return fmt.Errorf("next batch code: %w", err)
		}
		batch.BatchCode = fmt.Sprintf("LP%06d", n)
	}
	query := `
		INSERT INTO production_batches (id, batch_code, product_id, warehouse_id, production_date,
			planned_quantity, unit_id, status, manager_id,
			material_cost_total, unit_cost, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, NULL, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		batch.ID, batch.BatchCode, batch.ProductID, batch.WarehouseID, batch.ProductionDate,
		batch.PlannedQuantity, batch.UnitID, batch.Status, batch.ManagerID,
		batch.CreatedAt, batch.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert production batch: %w", err)
	}
	return nil
}

// GetByID obtiene un lote por ID.
func (r *BatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	return r.getBy(`WHERE id = $1`, id)
}

// GetByIDForUpdate obtiene un lote bloqueando su fila (SELECT FOR UPDATE):
// serializa los cierres concurrentes del mismo lote.
func (r *BatchRepo) GetByIDForUpdate(id string) (*entity.ProductionBatch, error) {
	return r.getBy(`WHERE id = $1 FOR UPDATE`, id)
}

// GetByCode obtiene un lote por código.
func (r *BatchRepo) GetByCode(code string) (*entity.ProductionBatch, error) {
	return r.getBy(`WHERE batch_code = $1`, code)
}

func (r *BatchRepo) getBy(where, arg string) (*entity.ProductionBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM production_batches ` + where
	var b entity.ProductionBatch
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&b.ID, &b.BatchCode, &b.ProductID, &b.WarehouseID, &b.ProductionDate,
		&b.PlannedQuantity, &b.UnitID, &b.Status, &b.ManagerID,
		&b.MaterialCostTotal, &b.UnitCost, &b.CompletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production batch: %w", err)
	}
	return &b, nil
}

// List lista lotes filtrando por estado y/o producto.
func (r *BatchRepo) List(status, productID string, limit, offset int) ([]*entity.ProductionBatch, error) {
	query := `
		SELECT ` + batchColumns + `
		FROM production_batches
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR product_id = $2)
		ORDER BY production_date DESC, batch_code DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, status, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list production batches: %w", err)
	}
	defer rows.Close()
	var out []*entity.ProductionBatch
	for rows.Next() {
		var b entity.ProductionBatch
		if err := rows.Scan(
			&b.ID, &b.BatchCode, &b.ProductID, &b.WarehouseID, &b.ProductionDate,
			&b.PlannedQuantity, &b.UnitID, &b.Status, &b.ManagerID,
			&b.MaterialCostTotal, &b.UnitCost, &b.CompletedAt, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan production batch: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

// Update actualiza estado, costos y fecha de cierre de un lote.
func (r *BatchRepo) Update(batch *entity.ProductionBatch) error {
	query := `
		UPDATE production_batches
		SET product_id = $2, warehouse_id = $3, production_date = $4, planned_quantity = $5,
		    unit_id = $6, status = $7, manager_id = $8,
		    material_cost_total = $9, unit_cost = $10, completed_at = $11, updated_at = $12
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		batch.ID, batch.ProductID, batch.WarehouseID, batch.ProductionDate, batch.PlannedQuantity,
		batch.UnitID, batch.Status, batch.ManagerID,
		batch.MaterialCostTotal, batch.UnitCost, batch.CompletedAt, batch.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update production batch: %w", err)
	}
	return nil
}

// AddMaterial inserta una línea de material. (batch_id, raw_material_id) es único.
func (r *BatchRepo) AddMaterial(line *entity.BatchMaterial) error {
	query := `
		INSERT INTO batch_materials (id, batch_id, raw_material_id, used_quantity, unit_id,
			unit_cost, line_cost, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.BatchID, line.RawMaterialID, line.UsedQuantity, line.UnitID,
		line.UnitCost, line.LineCost, line.CreatedAt, line.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert batch material: %w", err)
	}
	return nil
}

// UpdateMaterial actualiza cantidad y costos de una línea.
func (r *BatchRepo) UpdateMaterial(line *entity.BatchMaterial) error {
	query := `
		UPDATE batch_materials
		SET used_quantity = $2, unit_id = $3, unit_cost = $4, line_cost = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.UsedQuantity, line.UnitID, line.UnitCost, line.LineCost, line.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update batch material: %w", err)
	}
	return nil
}

// DeleteMaterial elimina una línea por ID.
func (r *BatchRepo) DeleteMaterial(lineID string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM batch_materials WHERE id = $1`, lineID)
	if err != nil {
		return fmt.Errorf("delete batch material: %w", err)
	}
	return nil
}

// ListMaterials lista las líneas de un lote en orden de creación.
func (r *BatchRepo) ListMaterials(batchID string) ([]*entity.BatchMaterial, error) {
	query := `
		SELECT id, batch_id, raw_material_id, used_quantity, unit_id, unit_cost, line_cost, created_at, updated_at
		FROM batch_materials WHERE batch_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list batch materials: %w", err)
	}
	defer rows.Close()
	var out []*entity.BatchMaterial
	for rows.Next() {
		var l entity.BatchMaterial
		if err := rows.Scan(
			&l.ID, &l.BatchID, &l.RawMaterialID, &l.UsedQuantity, &l.UnitID,
			&l.UnitCost, &l.LineCost, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch material: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}
