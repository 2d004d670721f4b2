package kardex

import (
	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// Catalog resuelve referencias polimórficas de ítem contra los catálogos de
// materia prima y producto. Construirlo con repos atados a la transacción
// cuando los ajustes de stock deban ser atómicos con el Kardex.
type Catalog struct {
	materialRepo repository.RawMaterialRepository
	productRepo  repository.ProductRepository
}

// NewCatalog construye el catálogo de ítems.
func NewCatalog(materialRepo repository.RawMaterialRepository, productRepo repository.ProductRepository) *Catalog {
	return &Catalog{materialRepo: materialRepo, productRepo: productRepo}
}

// Resolve devuelve el StockHolder del ítem referenciado, o ErrNotFound si la
// referencia no apunta a un registro existente.
func (c *Catalog) Resolve(ref kardex.ItemRef) (StockHolder, error) {
	switch ref.Kind {
	case kardex.ItemMateriaPrima:
		m, err := c.materialRepo.GetByID(ref.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, domain.ErrNotFound
		}
		return &materialHolder{material: m, repo: c.materialRepo}, nil
	case kardex.ItemProducto:
		p, err := c.productRepo.GetByID(ref.ID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, domain.ErrNotFound
		}
		return &productHolder{product: p, repo: c.productRepo}, nil
	}
	return nil, domain.ErrInvalidInput
}

type materialHolder struct {
	material *entity.RawMaterial
	repo     repository.RawMaterialRepository
}

type productHolder struct {
	product *entity.Product
	repo    repository.ProductRepository
}

func (h *materialHolder) Name() string           { return h.material.Name }
func (h *materialHolder) Stock() decimal.Decimal { return h.material.Stock }
func (h *materialHolder) AdjustStock(delta decimal.Decimal) error {
	return h.repo.AdjustStock(h.material.ID, delta)
}

func (h *productHolder) Name() string           { return h.product.Name }
func (h *productHolder) Stock() decimal.Decimal { return h.product.Stock }
func (h *productHolder) AdjustStock(delta decimal.Decimal) error {
	return h.repo.AdjustStock(h.product.ID, delta)
}
