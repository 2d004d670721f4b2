package repository

import (
	"time"

	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
)

// KardexRepository define el puerto de persistencia del Kardex (libro de
// movimientos). Los asientos son inmutables: solo se insertan y se consultan.
type KardexRepository interface {
	// Append inserta un asiento nuevo; nunca modifica los existentes.
	Append(entry *entity.KardexEntry) error
	// Latest devuelve el asiento más reciente para (almacén, ítem) por
	// (fecha, seq) descendente, o nil si no hay historial.
	Latest(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error)
	// LatestForUpdate hace lo mismo bloqueando la fila (SELECT FOR UPDATE):
	// serializa a los escritores concurrentes de la misma clave.
	LatestForUpdate(warehouseID string, ref kardex.ItemRef) (*entity.KardexEntry, error)
	// History lista asientos de (almacén, ítem) ascendente por (fecha, seq),
	// acotado por fechas opcionales. Releerlo es idempotente.
	History(warehouseID string, ref kardex.ItemRef, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error)
	// ListByWarehouse lista los movimientos de un almacén completo (reportes).
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.KardexEntry, error)
}
