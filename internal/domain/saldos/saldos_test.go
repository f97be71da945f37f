package saldos_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/saldos"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func saldoIVA(id string, original, aplicado string, ejercicio, mes int) *entity.SaldoFavor {
	return &entity.SaldoFavor{
		ID:                  id,
		ClienteID:           "cliente-1",
		Tipo:                entity.SaldoTipoIVA,
		MontoOriginal:       d(original),
		MontoAplicado:       d(aplicado),
		Activo:              true,
		EjercicioOrigen:     ejercicio,
		MesOrigen:           mes,
		EjercicioAplicacion: ejercicio,
		MesAplicacion:       mes,
	}
}

func TestDisponible_SumaRemanentesElegibles(t *testing.T) {
	lista := []*entity.SaldoFavor{
		saldoIVA("s1", "1000", "300", 2024, 1), // remanente 700
		saldoIVA("s2", "500", "0", 2024, 3),    // remanente 500
	}
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 6).Equal(d("1200")))
}

func TestDisponible_RespetaPeriodoDeAplicacion(t *testing.T) {
	futuro := saldoIVA("s1", "1000", "0", 2024, 9)
	lista := []*entity.SaldoFavor{futuro}

	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 6).IsZero(),
		"un saldo con aplicación en septiembre no está disponible en junio")
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 9).Equal(d("1000")))
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2025, 1).Equal(d("1000")),
		"en ejercicios posteriores siempre es elegible")
}

func TestDisponible_FiltraPorTipoYEstado(t *testing.T) {
	isr := saldoIVA("s1", "1000", "0", 2024, 1)
	isr.Tipo = entity.SaldoTipoISR

	inactivo := saldoIVA("s2", "1000", "1000", 2024, 1)
	inactivo.Activo = false

	eliminado := saldoIVA("s3", "1000", "0", 2024, 1)
	ahora := time.Now()
	eliminado.EliminadoEn = &ahora

	lista := []*entity.SaldoFavor{isr, inactivo, eliminado}
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 12).IsZero())
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoISR, 2024, 12).Equal(d("1000")))
}

// TestDisponible_InvarianteDelRemanente: montoOriginal=1000 y montoAplicado=300
// reportan 700 disponibles; tras aplicar los 700 restantes el saldo se agota.
func TestDisponible_InvarianteDelRemanente(t *testing.T) {
	s := saldoIVA("s1", "1000", "300", 2024, 1)
	lista := []*entity.SaldoFavor{s}

	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 6).Equal(d("700")))

	consumos, restante := saldos.Aplicar(lista, entity.SaldoTipoIVA, 2024, 6, d("700"))
	require.True(t, restante.IsZero())
	assert.True(t, consumos["s1"].Equal(d("700")))

	// Reflejar el consumo como lo haría el repositorio.
	s.MontoAplicado = s.MontoAplicado.Add(consumos["s1"])
	s.Activo = s.Remanente().GreaterThan(decimal.Zero)

	assert.False(t, s.Activo, "agotado el remanente, el saldo deja de estar activo")
	assert.True(t, saldos.Disponible(lista, entity.SaldoTipoIVA, 2024, 6).IsZero())
}

func TestAplicar_ConsumePorAntiguedad(t *testing.T) {
	viejo := saldoIVA("viejo", "400", "0", 2023, 11)
	nuevo := saldoIVA("nuevo", "600", "0", 2024, 2)

	consumos, restante := saldos.Aplicar(
		[]*entity.SaldoFavor{nuevo, viejo}, entity.SaldoTipoIVA, 2024, 6, d("500"))

	require.True(t, restante.IsZero())
	assert.True(t, consumos["viejo"].Equal(d("400")), "primero se agota el más antiguo")
	assert.True(t, consumos["nuevo"].Equal(d("100")))
}

func TestAplicar_ReportaRestanteSinCubrir(t *testing.T) {
	lista := []*entity.SaldoFavor{saldoIVA("s1", "300", "0", 2024, 1)}

	consumos, restante := saldos.Aplicar(lista, entity.SaldoTipoIVA, 2024, 6, d("1000"))
	assert.True(t, consumos["s1"].Equal(d("300")))
	assert.True(t, restante.Equal(d("700")), "lo que el disponible no alcanzó a cubrir")
}
