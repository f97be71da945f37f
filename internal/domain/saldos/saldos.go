// Package saldos: aritmética de saldos a favor (créditos fiscales arrastrados).
package saldos

import (
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// Disponible suma los remanentes de los saldos del tipo dado que pueden
// acreditarse en el periodo objetivo: activos, con remanente positivo y cuyo
// primer periodo elegible es en o antes del objetivo.
func Disponible(saldos []*entity.SaldoFavor, tipo string, ejercicio, mes int) decimal.Decimal {
	total := decimal.Zero
	for _, s := range saldos {
		if s == nil || s.Tipo != tipo {
			continue
		}
		if !s.DisponibleEn(ejercicio, mes) {
			continue
		}
		total = total.Add(s.Remanente())
	}
	return total
}

// Aplicar consume monto del conjunto de saldos elegibles en orden de
// antigüedad (primero el generado más antiguo). Devuelve por saldo el monto
// consumido; si el disponible no alcanza, consume lo que haya y reporta el
// restante sin cubrir.
func Aplicar(saldos []*entity.SaldoFavor, tipo string, ejercicio, mes int, monto decimal.Decimal) (consumos map[string]decimal.Decimal, restante decimal.Decimal) {
	consumos = make(map[string]decimal.Decimal)
	restante = monto
	for _, s := range ordenAntiguedad(saldos) {
		if restante.LessThanOrEqual(decimal.Zero) {
			break
		}
		if s.Tipo != tipo || !s.DisponibleEn(ejercicio, mes) {
			continue
		}
		toma := s.Remanente()
		if toma.GreaterThan(restante) {
			toma = restante
		}
		consumos[s.ID] = toma
		restante = restante.Sub(toma)
	}
	return consumos, restante
}

// ordenAntiguedad devuelve los saldos ordenados por periodo de origen
// ascendente (inserción estable, listas pequeñas).
func ordenAntiguedad(saldos []*entity.SaldoFavor) []*entity.SaldoFavor {
	out := make([]*entity.SaldoFavor, 0, len(saldos))
	for _, s := range saldos {
		if s == nil {
			continue
		}
		i := len(out)
		for i > 0 && periodo(out[i-1]) > periodo(s) {
			i--
		}
		out = append(out, nil)
		copy(out[i+1:], out[i:])
		out[i] = s
	}
	return out
}

func periodo(s *entity.SaldoFavor) int {
	return s.EjercicioOrigen*100 + s.MesOrigen
}
