// Package activos: cálculo de depreciación de activos fijos en línea recta.
// El monto mensual se calcula una sola vez y es constante durante toda la vida
// útil; nunca se recalcula a partir del saldo remanente de cada periodo.
package activos

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

var cien = decimal.NewFromInt(100)
var doce = decimal.NewFromInt(12)

// MontoMensual devuelve la depreciación mensual del activo, a dos decimales.
// Con tasa anual explícita (porcentaje LISR): costo * tasa/100 / 12.
// Sin tasa: línea recta (costo - residual) / vida útil en meses.
func MontoMensual(a *entity.ActivoFijo) decimal.Decimal {
	if a.TasaDeduccionAnual != nil {
		return a.Costo.Mul(*a.TasaDeduccionAnual).Div(cien).Div(doce).Round(2)
	}
	if a.VidaUtilMeses <= 0 {
		return decimal.Zero
	}
	return a.Costo.Sub(a.ValorResidual).
		Div(decimal.NewFromInt(int64(a.VidaUtilMeses))).
		Round(2)
}

// GenerarCalendario produce el calendario mensual desde el mes de compra por
// hasta maxPeriodos periodos (o la vida útil si maxPeriodos <= 0). El valor en
// libros se acota en el valor residual: si la deducción de un periodo rebasara
// costo - residual, se trunca para aterrizar exactamente en el residual y el
// calendario termina ahí.
func GenerarCalendario(a *entity.ActivoFijo, maxPeriodos int) []entity.DepreciacionMensual {
	monto := MontoMensual(a)
	if monto.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	limite := a.Costo.Sub(a.ValorResidual)
	periodos := a.VidaUtilMeses
	if maxPeriodos > 0 && maxPeriodos < periodos {
		periodos = maxPeriodos
	}

	var calendario []entity.DepreciacionMensual
	acumulada := decimal.Zero
	anio, mes := a.FechaCompra.Year(), int(a.FechaCompra.Month())

	for i := 0; i < periodos; i++ {
		deduccion := monto
		ultimo := false
		if acumulada.Add(deduccion).GreaterThan(limite) {
			deduccion = limite.Sub(acumulada)
			ultimo = true
		}
		if deduccion.LessThanOrEqual(decimal.Zero) {
			break
		}
		antes := acumulada
		acumulada = acumulada.Add(deduccion)
		calendario = append(calendario, entity.DepreciacionMensual{
			ActivoID:         a.ID,
			ClienteID:        a.ClienteID,
			Ejercicio:        anio,
			Mes:              mes,
			Monto:            deduccion,
			AcumuladaAntes:   antes,
			AcumuladaDespues: acumulada,
			ValorAntes:       a.Costo.Sub(antes),
			ValorDespues:     a.Costo.Sub(acumulada),
		})
		if ultimo {
			break
		}
		mes++
		if mes > 12 {
			mes = 1
			anio++
		}
	}
	return calendario
}

// AcumuladaAl devuelve la depreciación acumulada y el valor en libros a una
// fecha de corte, sin materializar el calendario:
// acumulada = monto * min(meses transcurridos, vida útil), acotada en
// costo - residual. Para activos no vigentes (vendido/baja) se reportan los
// últimos valores almacenados en lugar de recalcular.
func AcumuladaAl(a *entity.ActivoFijo, corte time.Time) (acumulada, valorActual decimal.Decimal) {
	if !a.EsVigente() {
		return a.DepreciacionAcumulada, a.ValorActual
	}
	meses := mesesTranscurridos(a.FechaCompra, corte)
	if meses > a.VidaUtilMeses {
		meses = a.VidaUtilMeses
	}
	if meses <= 0 {
		return decimal.Zero, a.Costo
	}
	acumulada = MontoMensual(a).Mul(decimal.NewFromInt(int64(meses)))
	if limite := a.Costo.Sub(a.ValorResidual); acumulada.GreaterThan(limite) {
		acumulada = limite
	}
	return acumulada, a.Costo.Sub(acumulada)
}

// mesesTranscurridos cuenta periodos mensuales desde el mes de compra hasta el
// corte, inclusive: el mes de compra es el periodo 1.
func mesesTranscurridos(compra, corte time.Time) int {
	if corte.Before(compra) {
		return 0
	}
	return (corte.Year()-compra.Year())*12 + int(corte.Month()) - int(compra.Month()) + 1
}
