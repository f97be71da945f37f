package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de saldo a favor.
const (
	SaldoTipoIVA = "IVA"
	SaldoTipoISR = "ISR"
)

// SaldoFavor representa un saldo a favor (pago en exceso) que se acredita
// contra obligaciones de periodos posteriores.
// Invariantes: MontoAplicado <= MontoOriginal; Activo == (remanente > 0).
type SaldoFavor struct {
	ID        string
	ClienteID string
	Tipo      string // SaldoTipoIVA | SaldoTipoISR

	MontoOriginal decimal.Decimal
	MontoAplicado decimal.Decimal // consumo acumulado
	Activo        bool

	// Periodo en el que se generó el saldo.
	MesOrigen       int
	EjercicioOrigen int
	// Primer periodo en el que puede acreditarse.
	MesAplicacion       int
	EjercicioAplicacion int

	Concepto string

	// Baja lógica: el saldo se conserva para auditoría.
	EliminadoEn *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remanente devuelve el monto aún disponible del saldo.
func (s *SaldoFavor) Remanente() decimal.Decimal {
	return s.MontoOriginal.Sub(s.MontoAplicado)
}

// DisponibleEn indica si el saldo puede acreditarse en el periodo dado.
func (s *SaldoFavor) DisponibleEn(ejercicio, mes int) bool {
	if !s.Activo || s.EliminadoEn != nil {
		return false
	}
	if s.Remanente().LessThanOrEqual(decimal.Zero) {
		return false
	}
	if s.EjercicioAplicacion < ejercicio {
		return true
	}
	return s.EjercicioAplicacion == ejercicio && s.MesAplicacion <= mes
}
