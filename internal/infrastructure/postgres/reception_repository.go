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

var _ repository.ReceptionRepository = (*ReceptionRepo)(nil)

// ReceptionRepo implementación de ReceptionRepository sobre PostgreSQL (usable con pool o tx).
// Las recepciones son registro histórico: solo insert y consulta.
type ReceptionRepo struct {
	q Querier
}

// NewReceptionRepository construye el adaptador de recepciones. Pasar pool o tx (Querier).
func NewReceptionRepository(q Querier) *ReceptionRepo {
	return &ReceptionRepo{q: q}
}

const receptionColumns = `id, raw_material_id, supplier_id, warehouse_id, quantity, unit_cost,
		invoice_number, lot, notes, received_by, received_at, created_at`

// Create persiste una recepción.
func (r *ReceptionRepo) Create(rec *entity.MaterialReception) error {
	query := `
		INSERT INTO material_receptions (id, raw_material_id, supplier_id, warehouse_id, quantity, unit_cost,
			invoice_number, lot, notes, received_by, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.RawMaterialID, rec.SupplierID, rec.WarehouseID, rec.Quantity, rec.UnitCost,
		rec.InvoiceNumber, rec.Lot, rec.Notes, rec.ReceivedBy, rec.ReceivedAt, rec.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("insert material reception: %w", err)
	}
	return nil
}

// GetByID obtiene una recepción por ID.
func (r *ReceptionRepo) GetByID(id string) (*entity.MaterialReception, error) {
	query := `SELECT ` + receptionColumns + ` FROM material_receptions WHERE id = $1`
	var rec entity.MaterialReception
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&rec.ID, &rec.RawMaterialID, &rec.SupplierID, &rec.WarehouseID, &rec.Quantity, &rec.UnitCost,
		&rec.InvoiceNumber, &rec.Lot, &rec.Notes, &rec.ReceivedBy, &rec.ReceivedAt, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get material reception: %w", err)
	}
	return &rec, nil
}

// List lista recepciones filtrando por materia prima y/o proveedor.
func (r *ReceptionRepo) List(rawMaterialID, supplierID string, limit, offset int) ([]*entity.MaterialReception, error) {
	query := `
		SELECT ` + receptionColumns + `
		FROM material_receptions
		WHERE ($1 = '' OR raw_material_id = $1) AND ($2 = '' OR supplier_id = $2)
		ORDER BY received_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, rawMaterialID, supplierID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list material receptions: %w", err)
	}
	defer rows.Close()
	var out []*entity.MaterialReception
	for rows.Next() {
		var rec entity.MaterialReception
		if err := rows.Scan(
			&rec.ID, &rec.RawMaterialID, &rec.SupplierID, &rec.WarehouseID, &rec.Quantity, &rec.UnitCost,
			&rec.InvoiceNumber, &rec.Lot, &rec.Notes, &rec.ReceivedBy, &rec.ReceivedAt, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan material reception: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
