// Package fiscal: agregación de CFDI en resúmenes mensuales y anuales de ISR e
// IVA para pagos provisionales. Todo se calcula bajo demanda a partir de los
// comprobantes ya cargados; no existe un documento de resumen persistido que
// pueda desfasarse de las facturas.
package fiscal

import (
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// IngresosMes totales del lado de ingresos de un mes.
type IngresosMes struct {
	ISRGravado    decimal.Decimal `json:"isrGravado"` // base gravable de ISR
	ISRRetenido   decimal.Decimal `json:"isrRetenido"`
	IVATrasladado decimal.Decimal `json:"ivaTrasladado"` // gravadoIVA del lado ingreso
	IVARetenido   decimal.Decimal `json:"ivaRetenido"`
	Total         decimal.Decimal `json:"total"`
	NumCFDI       int             `json:"numCfdi"`
}

// EgresosMes totales del lado de egresos (deducciones) de un mes.
type EgresosMes struct {
	ISRDeducible   decimal.Decimal `json:"isrDeducible"`
	IVAAcreditable decimal.Decimal `json:"ivaAcreditable"`
	Total          decimal.Decimal `json:"total"`
	NumCFDI        int             `json:"numCfdi"`
}

// ResumenMensual agregado de un mes con las cifras derivadas.
// IVAPendiente expresa el saldo a favor del mes cuando el IVA neto es negativo.
type ResumenMensual struct {
	Mes           int             `json:"mes"`
	Ingresos      IngresosMes     `json:"ingresos"`
	Egresos       EgresosMes      `json:"egresos"`
	UtilidadBruta decimal.Decimal `json:"utilidadBruta"`
	IVAAPagar     decimal.Decimal `json:"ivaAPagar"`
	IVAPendiente  decimal.Decimal `json:"ivaPendiente"`
}

// ResumenAnual agregado de los 12 meses más los totales del ejercicio.
// DeduccionesAnuales acumula los CFDI marcados con mes 13: no participan en
// ninguna tabla mensual y se reservan para la declaración anual.
type ResumenAnual struct {
	Ejercicio          int                `json:"ejercicio"`
	Meses              [12]ResumenMensual `json:"meses"`
	Totales            ResumenMensual     `json:"totales"`
	DeduccionesAnuales EgresosMes         `json:"deduccionesAnuales"`
}

// Acumulado cifras acumuladas de enero al mes indicado; el ISR provisional es
// acumulativo dentro del ejercicio por mandato legal.
type Acumulado struct {
	Mes         int             `json:"mes"`
	Ingresos    decimal.Decimal `json:"ingresos"`
	Deducciones decimal.Decimal `json:"deducciones"`
	ISRRetenido decimal.Decimal `json:"isrRetenido"`
}

// CalcularResumenAnual agrega el conjunto completo de CFDI de un cliente para
// el ejercicio dado. Solo participan en los meses los comprobantes no
// cancelados, marcados deducibles y con mes de deducción entre 1 y 12.
func CalcularResumenAnual(cfdis []*entity.CFDI, ejercicio int) *ResumenAnual {
	r := &ResumenAnual{Ejercicio: ejercicio}
	for i := range r.Meses {
		r.Meses[i].Mes = i + 1
	}

	for _, c := range cfdis {
		if c == nil || c.EstaCancelado || !c.EsDeducible {
			continue
		}
		if !c.Fecha.IsZero() && c.Fecha.Year() != ejercicio {
			continue
		}
		if c.MesDeduccion == entity.MesDeduccionAnual {
			if c.EsEgreso {
				r.DeduccionesAnuales.ISRDeducible = r.DeduccionesAnuales.ISRDeducible.Add(c.GravadoISR)
				r.DeduccionesAnuales.IVAAcreditable = r.DeduccionesAnuales.IVAAcreditable.Add(c.GravadoIVA)
				r.DeduccionesAnuales.Total = r.DeduccionesAnuales.Total.Add(c.Total)
				r.DeduccionesAnuales.NumCFDI++
			}
			continue
		}
		if c.MesDeduccion < 1 || c.MesDeduccion > 12 {
			continue
		}
		// Del lado de ingresos solo cuentan comprobantes tipo "I": una
		// nómina, un pago o una nota de crédito emitidos no son ingreso
		// gravable aunque la dirección sea de emisión. Del lado de
		// egresos basta la bandera: un gasto recibido también trae "I".
		mes := &r.Meses[c.MesDeduccion-1]
		if c.EsIngreso && c.TipoDeComprobante == entity.TipoIngreso {
			mes.Ingresos.ISRGravado = mes.Ingresos.ISRGravado.Add(c.GravadoISR)
			mes.Ingresos.ISRRetenido = mes.Ingresos.ISRRetenido.Add(c.ISRRetenido)
			mes.Ingresos.IVATrasladado = mes.Ingresos.IVATrasladado.Add(c.GravadoIVA)
			mes.Ingresos.IVARetenido = mes.Ingresos.IVARetenido.Add(c.IVARetenido)
			mes.Ingresos.Total = mes.Ingresos.Total.Add(c.Total)
			mes.Ingresos.NumCFDI++
		}
		if c.EsEgreso {
			mes.Egresos.ISRDeducible = mes.Egresos.ISRDeducible.Add(c.GravadoISR)
			mes.Egresos.IVAAcreditable = mes.Egresos.IVAAcreditable.Add(c.GravadoIVA)
			mes.Egresos.Total = mes.Egresos.Total.Add(c.Total)
			mes.Egresos.NumCFDI++
		}
	}

	for i := range r.Meses {
		derivarCifras(&r.Meses[i])
		acumularTotales(&r.Totales, &r.Meses[i])
	}
	derivarCifras(&r.Totales)
	return r
}

// AcumuladoHasta suma ingresos, deducciones e ISR retenido de enero al mes
// indicado (inclusive).
func AcumuladoHasta(r *ResumenAnual, mes int) Acumulado {
	a := Acumulado{Mes: mes}
	if mes < 1 {
		return a
	}
	if mes > 12 {
		mes = 12
	}
	for i := 0; i < mes; i++ {
		m := r.Meses[i]
		a.Ingresos = a.Ingresos.Add(m.Ingresos.ISRGravado)
		a.Deducciones = a.Deducciones.Add(m.Egresos.ISRDeducible)
		a.ISRRetenido = a.ISRRetenido.Add(m.Ingresos.ISRRetenido)
	}
	return a
}

// derivarCifras calcula utilidad bruta e IVA del periodo:
// ivaAPagar = trasladado - acreditable - retenido; si resulta negativo, el
// excedente se expresa como ivaPendiente (saldo a favor del periodo).
func derivarCifras(m *ResumenMensual) {
	m.UtilidadBruta = m.Ingresos.ISRGravado.Sub(m.Egresos.ISRDeducible)
	m.IVAAPagar = m.Ingresos.IVATrasladado.
		Sub(m.Egresos.IVAAcreditable).
		Sub(m.Ingresos.IVARetenido)
	if m.IVAAPagar.IsNegative() {
		m.IVAPendiente = m.IVAAPagar.Neg()
	} else {
		m.IVAPendiente = decimal.Zero
	}
}

func acumularTotales(tot, m *ResumenMensual) {
	tot.Ingresos.ISRGravado = tot.Ingresos.ISRGravado.Add(m.Ingresos.ISRGravado)
	tot.Ingresos.ISRRetenido = tot.Ingresos.ISRRetenido.Add(m.Ingresos.ISRRetenido)
	tot.Ingresos.IVATrasladado = tot.Ingresos.IVATrasladado.Add(m.Ingresos.IVATrasladado)
	tot.Ingresos.IVARetenido = tot.Ingresos.IVARetenido.Add(m.Ingresos.IVARetenido)
	tot.Ingresos.Total = tot.Ingresos.Total.Add(m.Ingresos.Total)
	tot.Ingresos.NumCFDI += m.Ingresos.NumCFDI

	tot.Egresos.ISRDeducible = tot.Egresos.ISRDeducible.Add(m.Egresos.ISRDeducible)
	tot.Egresos.IVAAcreditable = tot.Egresos.IVAAcreditable.Add(m.Egresos.IVAAcreditable)
	tot.Egresos.Total = tot.Egresos.Total.Add(m.Egresos.Total)
	tot.Egresos.NumCFDI += m.Egresos.NumCFDI
}
