package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepreciacionMensual es un renglón del libro de depreciación: uno por
// (activo, ejercicio, mes). El libro es append-only; sirve para reconstruir
// calendarios históricos sin recalcular.
// Invariantes: AcumuladaDespues = AcumuladaAntes + Monto,
// ValorDespues = costo - AcumuladaDespues, acotado por el valor residual.
type DepreciacionMensual struct {
	ID        string
	ActivoID  string
	ClienteID string
	Ejercicio int
	Mes       int // 1-12

	Monto            decimal.Decimal
	AcumuladaAntes   decimal.Decimal
	AcumuladaDespues decimal.Decimal
	ValorAntes       decimal.Decimal
	ValorDespues     decimal.Decimal

	CreatedAt time.Time
}
