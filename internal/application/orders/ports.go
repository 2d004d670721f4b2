package orders

import (
	"context"

	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// TxRunner abre una transacción y entrega repositorios atados a ella.
// El despacho de una orden escribe Kardex, stock, catálogo y la propia orden
// en una unidad atómica.
type TxRunner interface {
	RunOrders(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		orderRepo repository.OrderRepository,
	) error) error
}
