package activos_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/domain/activos"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func equipoComputo() *entity.ActivoFijo {
	return &entity.ActivoFijo{
		ID:            "activo-1",
		ClienteID:     "cliente-1",
		Nombre:        "Equipo de cómputo",
		Costo:         d("12000"),
		ValorResidual: decimal.Zero,
		VidaUtilMeses: 12,
		FechaCompra:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Estado:        entity.ActivoEstadoActivo,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Monto mensual
// ──────────────────────────────────────────────────────────────────────────────

func TestMontoMensual_LineaRecta(t *testing.T) {
	assert.True(t, activos.MontoMensual(equipoComputo()).Equal(d("1000")),
		"(12000 - 0) / 12 = 1000")
}

func TestMontoMensual_ConValorResidual(t *testing.T) {
	a := equipoComputo()
	a.ValorResidual = d("1200")
	assert.True(t, activos.MontoMensual(a).Equal(d("900")), "(12000 - 1200) / 12")
}

func TestMontoMensual_TasaAnualExplicita(t *testing.T) {
	a := equipoComputo()
	tasa := d("30") // 30% anual LISR para equipo de cómputo
	a.TasaDeduccionAnual = &tasa
	assert.True(t, activos.MontoMensual(a).Equal(d("300")), "12000 * 30% / 12")
}

func TestMontoMensual_VidaUtilCeroNoDivide(t *testing.T) {
	a := equipoComputo()
	a.VidaUtilMeses = 0
	assert.True(t, activos.MontoMensual(a).IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Calendario
// ──────────────────────────────────────────────────────────────────────────────

func TestGenerarCalendario_LlegaExactoAlResidual(t *testing.T) {
	cal := activos.GenerarCalendario(equipoComputo(), 0)

	require.Len(t, cal, 12, "no debe generar periodos más allá de la vida útil")
	for i, r := range cal {
		assert.True(t, r.Monto.Equal(d("1000")), "periodo %d monto constante", i+1)
		assert.True(t, r.AcumuladaDespues.Equal(r.AcumuladaAntes.Add(r.Monto)),
			"invariante acumulada del periodo %d", i+1)
		assert.True(t, r.ValorDespues.Equal(d("12000").Sub(r.AcumuladaDespues)),
			"invariante valor en libros del periodo %d", i+1)
	}
	ultimo := cal[11]
	assert.True(t, ultimo.AcumuladaDespues.Equal(d("12000")), "acumulada llega exacto al costo")
	assert.True(t, ultimo.ValorDespues.IsZero())
}

func TestGenerarCalendario_TruncaElUltimoPeriodo(t *testing.T) {
	a := equipoComputo()
	a.Costo = d("200")
	a.VidaUtilMeses = 3 // 66.67 mensual; tres periodos completos rebasarían 200

	cal := activos.GenerarCalendario(a, 0)
	require.Len(t, cal, 3)
	ultimo := cal[2]
	assert.True(t, ultimo.Monto.Equal(d("66.66")),
		"el último periodo se trunca para aterrizar exacto en el residual")
	assert.True(t, ultimo.AcumuladaDespues.Equal(d("200")))
	assert.True(t, ultimo.ValorDespues.IsZero())
}

func TestGenerarCalendario_AvanzaMesesYEjercicios(t *testing.T) {
	a := equipoComputo()
	a.FechaCompra = time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)

	cal := activos.GenerarCalendario(a, 4)
	require.Len(t, cal, 4)
	assert.Equal(t, 11, cal[0].Mes)
	assert.Equal(t, 2024, cal[0].Ejercicio)
	assert.Equal(t, 1, cal[2].Mes, "enero del siguiente ejercicio")
	assert.Equal(t, 2025, cal[2].Ejercicio)
}

func TestGenerarCalendario_RespetaTopeDePeriodos(t *testing.T) {
	cal := activos.GenerarCalendario(equipoComputo(), 5)
	assert.Len(t, cal, 5)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valuación a una fecha de corte
// ──────────────────────────────────────────────────────────────────────────────

func TestAcumuladaAl_CorteIntermedio(t *testing.T) {
	acum, valor := activos.AcumuladaAl(equipoComputo(), time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC))

	// Enero a junio = 6 periodos.
	assert.True(t, acum.Equal(d("6000")))
	assert.True(t, valor.Equal(d("6000")))
}

func TestAcumuladaAl_SeTopaEnCostoMenosResidual(t *testing.T) {
	acum, valor := activos.AcumuladaAl(equipoComputo(), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))

	assert.True(t, acum.Equal(d("12000")), "nunca rebasa costo - residual")
	assert.True(t, valor.IsZero())
}

func TestAcumuladaAl_AntesDeLaCompra(t *testing.T) {
	acum, valor := activos.AcumuladaAl(equipoComputo(), time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC))

	assert.True(t, acum.IsZero())
	assert.True(t, valor.Equal(d("12000")))
}

func TestAcumuladaAl_ActivoNoVigenteReportaValoresAlmacenados(t *testing.T) {
	a := equipoComputo()
	a.Estado = entity.ActivoEstadoVendido
	a.DepreciacionAcumulada = d("7000")
	a.ValorActual = d("5000")

	acum, valor := activos.AcumuladaAl(a, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, acum.Equal(d("7000")), "vendido/baja: no se recalcula")
	assert.True(t, valor.Equal(d("5000")))
}
