package kardex_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innoquim/erp-backend/internal/domain"
	"github.com/innoquim/erp-backend/internal/domain/entity"
	"github.com/innoquim/erp-backend/internal/domain/kardex"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func entrada(qty, cost string) kardex.Movement {
	return kardex.Movement{Type: entity.MovementEntrada, Quantity: dec(qty), UnitCost: dec(cost)}
}

func salida(qty, cost string) kardex.Movement {
	return kardex.Movement{Type: entity.MovementSalida, Quantity: dec(qty), UnitCost: dec(cost)}
}

func assertBalance(t *testing.T, b kardex.Balance, qty, total, avg string) {
	t.Helper()
	assert.True(t, b.Quantity.Equal(dec(qty)), "cantidad: esperado %s, obtenido %s", qty, b.Quantity)
	assert.True(t, b.TotalCost.Equal(dec(total)), "valor total: esperado %s, obtenido %s", total, b.TotalCost)
	assert.True(t, b.AvgCost.Equal(dec(avg)), "costo promedio: esperado %s, obtenido %s", avg, b.AvgCost)
}

// ──────────────────────────────────────────────────────────────────────────────
// Promedio ponderado clásico
// ──────────────────────────────────────────────────────────────────────────────

// ENTRADA 100 @ 5.00 → (100, 500.00, 5.0000); ENTRADA 50 @ 8.00 →
// (150, 900.00, 6.0000); SALIDA 60 valorada al promedio → (90, 540.00, 6.0000).
func TestCalculate_PromedioPonderado(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), entrada("100", "5.00"))
	require.NoError(t, err)
	assertBalance(t, b, "100", "500.00", "5.0000")

	b, err = kardex.Calculate(b, entrada("50", "8.00"))
	require.NoError(t, err)
	assertBalance(t, b, "150", "900.00", "6.0000")

	b, err = kardex.Calculate(b, salida("60", "99.99")) // el costo del llamador se ignora con saldo > 0
	require.NoError(t, err)
	assertBalance(t, b, "90", "540.00", "6.0000")
}

// La SALIDA nunca altera el costo promedio mientras haya existencias.
func TestCalculate_SalidaNoAlteraPromedio(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), entrada("30", "2.5000"))
	require.NoError(t, err)

	for _, qty := range []string{"1", "5", "10"} {
		next, err := kardex.Calculate(b, salida(qty, "7.77"))
		require.NoError(t, err)
		assert.True(t, next.AvgCost.Equal(b.AvgCost),
			"el promedio cambió tras SALIDA de %s: %s → %s", qty, b.AvgCost, next.AvgCost)
		b = next
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Arranque desde cero y ajuste a cero
// ──────────────────────────────────────────────────────────────────────────────

// SALIDA desde saldo cero: usa el costo del llamador como arranque y, al quedar
// la cantidad negativa, el saldo completo se ajusta a (0, 0, 0).
func TestCalculate_SalidaDesdeCeroAjustaACero(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), salida("10", "3.00"))
	require.NoError(t, err)
	assertBalance(t, b, "0", "0", "0")
}

// SALIDA mayor al saldo disponible: política de ajuste a cero, nunca negativo.
func TestCalculate_SobregiroAjustaACero(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), entrada("5", "4.00"))
	require.NoError(t, err)

	b, err = kardex.Calculate(b, salida("8", "0"))
	require.NoError(t, err)
	assertBalance(t, b, "0", "0", "0")
	assert.False(t, b.Quantity.IsNegative())
}

// SALIDA exacta del saldo: la cantidad llega a cero pero NO se dispara el
// ajuste (solo aplica con cantidad negativa).
func TestCalculate_SalidaExacta(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), entrada("20", "3.00"))
	require.NoError(t, err)

	b, err = kardex.Calculate(b, salida("20", "0"))
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())
	assert.True(t, b.AvgCost.Equal(dec("3.0000")), "el promedio se conserva en salida exacta")
}

// ──────────────────────────────────────────────────────────────────────────────
// Redondeos y validación
// ──────────────────────────────────────────────────────────────────────────────

// El promedio se redondea half-up a 4 decimales: 100.00 / 15 = 6.6667.
func TestCalculate_RedondeoPromedio(t *testing.T) {
	b, err := kardex.Calculate(kardex.ZeroBalance(), entrada("15", "6.666666"))
	require.NoError(t, err)
	// 15 * 6.666666 = 100.00 (2 decimales half-up)
	assert.True(t, b.TotalCost.Equal(dec("100.00")), "total: %s", b.TotalCost)
	assert.True(t, b.AvgCost.Equal(dec("6.6667")), "promedio: %s", b.AvgCost)
}

func TestMovementTotal_DosDecimales(t *testing.T) {
	assert.True(t, kardex.MovementTotal(dec("3"), dec("1.005")).Equal(dec("3.02")))
	assert.True(t, kardex.MovementTotal(dec("60"), dec("6.0000")).Equal(dec("360.00")))
}

func TestCalculate_TipoInvalido(t *testing.T) {
	_, err := kardex.Calculate(kardex.ZeroBalance(), kardex.Movement{Type: "TRASLADO", Quantity: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedad de cadena: reproducir el historial desde cero devuelve los
// mismos saldos que quedaron registrados en cada asiento.
// ──────────────────────────────────────────────────────────────────────────────

func TestCalculate_CadenaReproducible(t *testing.T) {
	movimientos := []kardex.Movement{
		entrada("100", "5.00"),
		entrada("50", "8.00"),
		salida("60", "0"),
		entrada("10", "7.25"),
		salida("95", "0"),
		salida("20", "1.00"), // sobregiro → ajuste a cero
		entrada("40", "3.10"),
	}

	// Primera pasada: registrar los saldos como lo haría el Kardex.
	var snapshots []kardex.Balance
	b := kardex.ZeroBalance()
	for _, mov := range movimientos {
		next, err := kardex.Calculate(b, mov)
		require.NoError(t, err)
		snapshots = append(snapshots, next)
		b = next
	}

	// Segunda pasada: repetir desde cero y comparar contra cada snapshot.
	b = kardex.ZeroBalance()
	for i, mov := range movimientos {
		next, err := kardex.Calculate(b, mov)
		require.NoError(t, err)
		assert.True(t, next.Quantity.Equal(snapshots[i].Quantity), "movimiento %d: cantidad", i)
		assert.True(t, next.TotalCost.Equal(snapshots[i].TotalCost), "movimiento %d: valor", i)
		assert.True(t, next.AvgCost.Equal(snapshots[i].AvgCost), "movimiento %d: promedio", i)
		b = next
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ItemRef
// ──────────────────────────────────────────────────────────────────────────────

func TestItemRef_Valid(t *testing.T) {
	assert.True(t, kardex.MateriaPrimaRef("MP000001").Valid())
	assert.True(t, kardex.ProductoRef("QX-500").Valid())
	assert.False(t, kardex.ItemRef{Kind: kardex.ItemMateriaPrima}.Valid(), "ID vacío")
	assert.False(t, kardex.ItemRef{Kind: "OTRO", ID: "X"}.Valid(), "tipo desconocido")
}
