package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

// RawMaterialRepo implementación de RawMaterialRepository sobre PostgreSQL
// (usable con pool o tx).
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador de materias primas. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

const rawMaterialColumns = `id, code, name, description, unit_id, density,
		min_stock, max_stock, stock, average_cost, unit_price, created_at, updated_at`

// Create persiste una materia prima. Si ID viene vacío genera el siguiente
// MPnnnnnn desde la secuencia raw_material_seq.
func (r *RawMaterialRepo) Create(material *entity.RawMaterial) error {
	ctx := context.Background()
	if material.ID == "" {
		var n int64
		if err := r.q.QueryRow(ctx, `SELECT nextval('raw_material_seq')`).Scan(&n); err != nil {
			return fmt.Errorf("next raw material id: %w", err)
		}
		material.ID = fmt.Sprintf("MP%06d", n)
	}
	query := `
		INSERT INTO raw_materials (id, code, name, description, unit_id, density,
			min_stock, max_stock, stock, average_cost, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		material.ID, material.Code, material.Name, material.Description, material.UnitID,
		material.Density, material.MinStock, material.MaxStock, material.UnitPrice,
		material.CreatedAt, material.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert raw material: %w", err)
	}
	return nil
}

// GetByID obtiene una materia prima por ID.
func (r *RawMaterialRepo) GetByID(id string) (*entity.RawMaterial, error) {
	return r.getBy(`WHERE id = $1`, id)
}

// GetByCode obtiene una materia prima por código interno.
func (r *RawMaterialRepo) GetByCode(code string) (*entity.RawMaterial, error) {
	return r.getBy(`WHERE code = $1`, code)
}

func (r *RawMaterialRepo) getBy(where, arg string) (*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + ` FROM raw_materials ` + where
	var m entity.RawMaterial
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&m.ID, &m.Code, &m.Name, &m.Description, &m.UnitID, &m.Density,
		&m.MinStock, &m.MaxStock, &m.Stock, &m.AverageCost, &m.UnitPrice,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return &m, nil
}

// List lista materias primas; search filtra por nombre o código (sin tildes,
// el caller normaliza el término).
func (r *RawMaterialRepo) List(search string, limit, offset int) ([]*entity.RawMaterial, error) {
	query := `
		SELECT ` + rawMaterialColumns + `
		FROM raw_materials
		WHERE ($1 = '' OR unaccent(lower(name)) LIKE '%' || $1 || '%' OR lower(code) LIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	defer rows.Close()
	var out []*entity.RawMaterial
	for rows.Next() {
		var m entity.RawMaterial
		if err := rows.Scan(
			&m.ID, &m.Code, &m.Name, &m.Description, &m.UnitID, &m.Density,
			&m.MinStock, &m.MaxStock, &m.Stock, &m.AverageCost, &m.UnitPrice,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Update actualiza datos maestros. No toca stock ni average_cost.
func (r *RawMaterialRepo) Update(material *entity.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET name = $2, description = $3, unit_id = $4, density = $5,
		    min_stock = $6, max_stock = $7, unit_price = $8, updated_at = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		material.ID, material.Name, material.Description, material.UnitID, material.Density,
		material.MinStock, material.MaxStock, material.UnitPrice, material.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update raw material: %w", err)
	}
	return nil
}

// UpdateAverageCost fija el costo promedio cacheado (lo escribe el Kardex).
func (r *RawMaterialRepo) UpdateAverageCost(id string, cost decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE raw_materials SET average_cost = $2, updated_at = now() WHERE id = $1`,
		id, cost,
	)
	if err != nil {
		return fmt.Errorf("update raw material average cost: %w", err)
	}
	return nil
}

// AdjustStock suma delta al contador global cacheado.
func (r *RawMaterialRepo) AdjustStock(id string, delta decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE raw_materials SET stock = stock + $2, updated_at = now() WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust raw material stock: %w", err)
	}
	return nil
}
