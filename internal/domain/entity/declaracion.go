package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos y estados de declaraciones.
const (
	DeclaracionProvisional = "provisional"
	DeclaracionAnual       = "anual"

	DeclaracionBorrador   = "borrador"
	DeclaracionPresentada = "presentada"
)

// Declaracion representa una declaración de impuestos (pago provisional mensual
// o declaración anual) calculada a partir de los CFDI clasificados.
type Declaracion struct {
	ID        string
	ClienteID string
	Tipo      string // provisional | anual
	Ejercicio int
	Mes       int // 0 para anual

	// Bases acumuladas del ejercicio al mes declarado (el ISR provisional es
	// acumulativo por ley).
	IngresosAcumulados    decimal.Decimal
	DeduccionesAcumuladas decimal.Decimal
	ISRRetenidoAcumulado  decimal.Decimal

	ISRCausado                decimal.Decimal
	PagosProvisionalesPrevios decimal.Decimal
	ISRCargo                  decimal.Decimal
	IVACargo                  decimal.Decimal
	SaldoAplicadoISR          decimal.Decimal
	SaldoAplicadoIVA          decimal.Decimal

	Estado            string
	FechaPresentacion *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
