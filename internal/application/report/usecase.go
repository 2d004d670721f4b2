// Package report arma el reporte de valorización de inventario: el saldo
// Kardex vigente de cada ítem de un almacén, valorado al costo promedio
// ponderado, renderizado a PDF.
package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// ValuationLine es una fila del reporte: un ítem con su saldo valorado.
type ValuationLine struct {
	ItemType  string // MATERIA_PRIMA | PRODUCTO
	Code      string
	Name      string
	UnitID    string
	Quantity  decimal.Decimal
	AvgCost   decimal.Decimal
	TotalCost decimal.Decimal
}

// Valuation es el reporte completo de un almacén.
type Valuation struct {
	Warehouse   *entity.Warehouse
	Lines       []ValuationLine
	GrandTotal  decimal.Decimal
	GeneratedAt time.Time
}

// ValuationPDFGenerator renderiza el reporte a PDF.
type ValuationPDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, valuation *Valuation) ([]byte, error)
}

// ValuationUseCase construye el reporte leyendo el snapshot de stock del
// almacén y el último asiento Kardex de cada ítem (saldo y promedio vigentes).
type ValuationUseCase struct {
	kardexRepo    repository.KardexRepository
	stockRepo     repository.StockRepository
	materialRepo  repository.RawMaterialRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	generator     ValuationPDFGenerator
}

// NewValuationUseCase construye el caso de uso del reporte de valorización.
func NewValuationUseCase(
	kardexRepo repository.KardexRepository,
	stockRepo repository.StockRepository,
	materialRepo repository.RawMaterialRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	generator ValuationPDFGenerator,
) *ValuationUseCase {
	return &ValuationUseCase{
		kardexRepo:    kardexRepo,
		stockRepo:     stockRepo,
		materialRepo:  materialRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		generator:     generator,
	}
}

// BuildValuation arma el reporte en memoria para un almacén.
func (uc *ValuationUseCase) BuildValuation(ctx context.Context, warehouseID string) (*Valuation, error) {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, domain.ErrNotFound
	}

	stocks, err := uc.stockRepo.ListByWarehouse(warehouseID)
	if err != nil {
		return nil, err
	}

	valuation := &Valuation{
		Warehouse:   wh,
		GrandTotal:  decimal.Zero,
		GeneratedAt: time.Now(),
	}
	for _, s := range stocks {
		ref := kardex.ItemRef{Kind: kardex.ItemKind(s.ItemType), ID: s.ItemID}
		last, err := uc.kardexRepo.Latest(warehouseID, ref)
		if err != nil {
			return nil, err
		}
		if last == nil || last.BalanceQuantity.IsZero() {
			continue
		}

		line := ValuationLine{
			ItemType:  s.ItemType,
			Quantity:  last.BalanceQuantity,
			AvgCost:   last.BalanceAvgCost,
			TotalCost: last.BalanceTotalCost,
		}
		switch ref.Kind {
		case kardex.ItemMateriaPrima:
			m, err := uc.materialRepo.GetByID(s.ItemID)
			if err != nil {
				return nil, err
			}
			if m == nil {
				continue
			}
			line.Code, line.Name, line.UnitID = m.Code, m.Name, m.UnitID
		case kardex.ItemProducto:
			p, err := uc.productRepo.GetByID(s.ItemID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				continue
			}
			line.Code, line.Name, line.UnitID = p.Code, p.Name, p.UnitID
		default:
			continue
		}

		valuation.Lines = append(valuation.Lines, line)
		valuation.GrandTotal = valuation.GrandTotal.Add(line.TotalCost)
	}
	return valuation, nil
}

// GeneratePDF arma el reporte y lo renderiza a PDF.
func (uc *ValuationUseCase) GeneratePDF(ctx context.Context, warehouseID string) ([]byte, error) {
	valuation, err := uc.BuildValuation(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	return uc.generator.GenerateValuationPDF(ctx, valuation)
}
