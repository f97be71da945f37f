package dto

import "github.com/shopspring/decimal"

// CrearSaldoRequest alta de un saldo a favor.
type CrearSaldoRequest struct {
	Tipo                string          `json:"tipo" validate:"required,oneof=IVA ISR"`
	Monto               decimal.Decimal `json:"monto" validate:"required"`
	MesOrigen           int             `json:"mes_origen" validate:"required,min=1,max=12"`
	EjercicioOrigen     int             `json:"ejercicio_origen" validate:"required"`
	MesAplicacion       int             `json:"mes_aplicacion" validate:"required,min=1,max=12"`
	EjercicioAplicacion int             `json:"ejercicio_aplicacion" validate:"required"`
	Concepto            string          `json:"concepto"`
}

// AplicarSaldoRequest consumo de saldo contra una obligación.
type AplicarSaldoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required"`
}

// SaldoResponse saldo con su remanente.
type SaldoResponse struct {
	ID                  string          `json:"id"`
	Tipo                string          `json:"tipo"`
	MontoOriginal       decimal.Decimal `json:"monto_original"`
	MontoAplicado       decimal.Decimal `json:"monto_aplicado"`
	Remanente           decimal.Decimal `json:"remanente"`
	Activo              bool            `json:"activo"`
	MesOrigen           int             `json:"mes_origen"`
	EjercicioOrigen     int             `json:"ejercicio_origen"`
	MesAplicacion       int             `json:"mes_aplicacion"`
	EjercicioAplicacion int             `json:"ejercicio_aplicacion"`
	Concepto            string          `json:"concepto,omitempty"`
}

// DisponibleResponse crédito disponible para un periodo.
type DisponibleResponse struct {
	Tipo       string          `json:"tipo"`
	Ejercicio  int             `json:"ejercicio"`
	Mes        int             `json:"mes"`
	Disponible decimal.Decimal `json:"disponible"`
}
