package production

import (
	"context"

	"github.com/innoquim/erp-backend/internal/domain/repository"
)

// TxRunner abre la transacción de cierre de lote: repos de Kardex más el de
// lotes, todos atados a la misma tx para que el consumo de materiales, el alta
// del producto y el cambio de estado sean un todo-o-nada.
type TxRunner interface {
	RunSettlement(ctx context.Context, fn func(
		kardexRepo repository.KardexRepository,
		stockRepo repository.StockRepository,
		materialRepo repository.RawMaterialRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
	) error) error
}
