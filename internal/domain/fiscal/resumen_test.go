package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/fiscal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fechaEnEjercicio ancla la fecha del CFDI dentro de 2024. El mes 13 (anual)
// no es un mes calendario; se ancla en diciembre para que la fecha no se
// desborde al ejercicio siguiente.
func fechaEnEjercicio(mes, dia int) time.Time {
	if mes < 1 || mes > 12 {
		mes = 12
	}
	return time.Date(2024, time.Month(mes), dia, 0, 0, 0, 0, time.UTC)
}

// ingreso construye un CFDI de ingreso deducible del mes dado.
func ingreso(mes int, gravadoISR, isrRet, gravadoIVA, ivaRet, total string) *entity.CFDI {
	return &entity.CFDI{
		TipoDeComprobante: entity.TipoIngreso,
		EsIngreso:         true,
		EsDeducible:       true,
		MesDeduccion:      mes,
		Fecha:             fechaEnEjercicio(mes, 10),
		GravadoISR:        d(gravadoISR),
		ISRRetenido:       d(isrRet),
		GravadoIVA:        d(gravadoIVA),
		IVARetenido:       d(ivaRet),
		Total:             d(total),
	}
}

// egreso construye un CFDI de gasto deducible del mes dado.
func egreso(mes int, gravadoISR, gravadoIVA, total string) *entity.CFDI {
	return &entity.CFDI{
		TipoDeComprobante: entity.TipoIngreso, // el emisor lo emitió como ingreso suyo
		EsEgreso:          true,
		EsDeducible:       true,
		MesDeduccion:      mes,
		Fecha:             fechaEnEjercicio(mes, 20),
		GravadoISR:        d(gravadoISR),
		GravadoIVA:        d(gravadoIVA),
		Total:             d(total),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Filtro de inclusión mensual
// ──────────────────────────────────────────────────────────────────────────────

func TestResumen_ExcluyeCanceladosNoDeduciblesYMesFueraDeRango(t *testing.T) {
	cancelado := ingreso(1, "1000", "0", "160", "0", "1160")
	cancelado.EstaCancelado = true

	noDeducible := ingreso(1, "2000", "0", "320", "0", "2320")
	noDeducible.EsDeducible = false

	sinMes := ingreso(1, "3000", "0", "480", "0", "3480")
	sinMes.MesDeduccion = 0

	r := fiscal.CalcularResumenAnual([]*entity.CFDI{cancelado, noDeducible, sinMes}, 2024)

	for i, m := range r.Meses {
		assert.True(t, m.Ingresos.Total.IsZero(), "mes %d debe quedar en cero", i+1)
		assert.Zero(t, m.Ingresos.NumCFDI)
	}
	assert.True(t, r.Totales.Ingresos.Total.IsZero())
}

// TestResumen_SoloTipoIngresoSumaComoIngreso: una nómina o un pago emitidos
// por el cliente llevan EsIngreso pero no son ingreso gravable; solo los
// comprobantes tipo "I" participan del lado de ingresos.
func TestResumen_SoloTipoIngresoSumaComoIngreso(t *testing.T) {
	nomina := ingreso(3, "10000", "0", "0", "0", "10000")
	nomina.TipoDeComprobante = entity.TipoNomina

	pago := ingreso(3, "2000", "0", "0", "0", "2000")
	pago.TipoDeComprobante = entity.TipoPago

	notaCredito := ingreso(3, "500", "0", "80", "0", "580")
	notaCredito.TipoDeComprobante = entity.TipoEgreso

	r := fiscal.CalcularResumenAnual([]*entity.CFDI{nomina, pago, notaCredito}, 2024)

	marzo := r.Meses[2]
	assert.Zero(t, marzo.Ingresos.NumCFDI)
	assert.True(t, marzo.Ingresos.ISRGravado.IsZero(),
		"gravado ISR de ingresos debe quedar en cero, fue %s", marzo.Ingresos.ISRGravado)
	assert.True(t, r.Totales.UtilidadBruta.IsZero())
}

func TestResumen_MesTreceVaADeduccionesAnuales(t *testing.T) {
	anual := egreso(entity.MesDeduccionAnual, "5000", "800", "5800")

	r := fiscal.CalcularResumenAnual([]*entity.CFDI{anual}, 2024)

	for i, m := range r.Meses {
		assert.True(t, m.Egresos.Total.IsZero(), "mes %d no debe incluir deducción anual", i+1)
	}
	assert.Equal(t, 1, r.DeduccionesAnuales.NumCFDI)
	assert.True(t, r.DeduccionesAnuales.ISRDeducible.Equal(d("5000")))
}

func TestResumen_OtroEjercicioNoParticipa(t *testing.T) {
	c := ingreso(4, "1000", "0", "160", "0", "1160")
	c.Fecha = time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)

	r := fiscal.CalcularResumenAnual([]*entity.CFDI{c}, 2024)
	assert.True(t, r.Totales.Ingresos.Total.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Agregación mensual y totales anuales
// ──────────────────────────────────────────────────────────────────────────────

func TestResumen_AgregaPorMesYLado(t *testing.T) {
	cfdis := []*entity.CFDI{
		ingreso(3, "10000", "1000", "1600", "1066.67", "9533.33"),
		ingreso(3, "5000", "0", "800", "0", "5800"),
		egreso(3, "2000", "320", "2320"),
		ingreso(7, "4000", "0", "640", "0", "4640"),
	}
	r := fiscal.CalcularResumenAnual(cfdis, 2024)

	marzo := r.Meses[2]
	assert.Equal(t, 2, marzo.Ingresos.NumCFDI)
	assert.True(t, marzo.Ingresos.ISRGravado.Equal(d("15000")))
	assert.True(t, marzo.Ingresos.ISRRetenido.Equal(d("1000")))
	assert.True(t, marzo.Ingresos.IVATrasladado.Equal(d("2400")))
	assert.Equal(t, 1, marzo.Egresos.NumCFDI)
	assert.True(t, marzo.Egresos.ISRDeducible.Equal(d("2000")))
	assert.True(t, marzo.UtilidadBruta.Equal(d("13000")), "utilidad = ingresos - deducciones")

	julio := r.Meses[6]
	assert.Equal(t, 1, julio.Ingresos.NumCFDI)
	assert.True(t, julio.Ingresos.ISRGravado.Equal(d("4000")))
}

// TestResumen_TotalesSonSumaDeMeses: para todo campo, el total anual es la suma
// de los 12 meses.
func TestResumen_TotalesSonSumaDeMeses(t *testing.T) {
	var cfdis []*entity.CFDI
	for mes := 1; mes <= 12; mes++ {
		cfdis = append(cfdis,
			ingreso(mes, "1000", "100", "160", "10", "1050"),
			egreso(mes, "400", "64", "464"),
		)
	}
	r := fiscal.CalcularResumenAnual(cfdis, 2024)

	sumaISR, sumaDeduc, sumaTotal := decimal.Zero, decimal.Zero, decimal.Zero
	numIngresos := 0
	for _, m := range r.Meses {
		sumaISR = sumaISR.Add(m.Ingresos.ISRGravado)
		sumaDeduc = sumaDeduc.Add(m.Egresos.ISRDeducible)
		sumaTotal = sumaTotal.Add(m.Ingresos.Total)
		numIngresos += m.Ingresos.NumCFDI
	}
	assert.True(t, r.Totales.Ingresos.ISRGravado.Equal(sumaISR))
	assert.True(t, r.Totales.Egresos.ISRDeducible.Equal(sumaDeduc))
	assert.True(t, r.Totales.Ingresos.Total.Equal(sumaTotal))
	assert.Equal(t, numIngresos, r.Totales.Ingresos.NumCFDI)
	assert.True(t, r.Totales.UtilidadBruta.Equal(d("7200")), "12 * (1000 - 400)")
}

// ──────────────────────────────────────────────────────────────────────────────
// Convención de signo del IVA
// ──────────────────────────────────────────────────────────────────────────────

func TestResumen_IVAAPagarPositivo(t *testing.T) {
	cfdis := []*entity.CFDI{
		ingreso(5, "6250", "0", "1000", "100", "7250"),
		egreso(5, "2500", "400", "2900"),
	}
	r := fiscal.CalcularResumenAnual(cfdis, 2024)

	mayo := r.Meses[4]
	// 1000 - 400 - 100 = 500
	assert.True(t, mayo.IVAAPagar.Equal(d("500")))
	assert.True(t, mayo.IVAPendiente.IsZero())
}

func TestResumen_IVANegativoProduceSaldoPendiente(t *testing.T) {
	cfdis := []*entity.CFDI{
		ingreso(5, "6250", "0", "1000", "100", "7250"),
		egreso(5, "7500", "1200", "8700"),
	}
	r := fiscal.CalcularResumenAnual(cfdis, 2024)

	mayo := r.Meses[4]
	// 1000 - 1200 - 100 = -300
	assert.True(t, mayo.IVAAPagar.Equal(d("-300")))
	assert.True(t, mayo.IVAPendiente.Equal(d("300")),
		"el IVA neto negativo se expresa como pendiente/a favor")
}

// ──────────────────────────────────────────────────────────────────────────────
// Acumulado para pagos provisionales
// ──────────────────────────────────────────────────────────────────────────────

func TestAcumuladoHasta_SumaDeEneroAlMes(t *testing.T) {
	var cfdis []*entity.CFDI
	for mes := 1; mes <= 6; mes++ {
		cfdis = append(cfdis,
			ingreso(mes, "1000", "50", "160", "0", "1160"),
			egreso(mes, "300", "48", "348"),
		)
	}
	r := fiscal.CalcularResumenAnual(cfdis, 2024)

	a := fiscal.AcumuladoHasta(r, 4)
	require.Equal(t, 4, a.Mes)
	assert.True(t, a.Ingresos.Equal(d("4000")))
	assert.True(t, a.Deducciones.Equal(d("1200")))
	assert.True(t, a.ISRRetenido.Equal(d("200")))

	todo := fiscal.AcumuladoHasta(r, 12)
	assert.True(t, todo.Ingresos.Equal(d("6000")), "meses sin datos suman cero")
}

func TestAcumuladoHasta_MesInvalido(t *testing.T) {
	r := fiscal.CalcularResumenAnual(nil, 2024)
	a := fiscal.AcumuladoHasta(r, 0)
	assert.True(t, a.Ingresos.IsZero())
}
