package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalcularDeclaracionRequest genera el borrador de un pago provisional.
type CalcularDeclaracionRequest struct {
	Ejercicio     int             `json:"ejercicio" validate:"required"`
	Mes           int             `json:"mes" validate:"required,min=1,max=12"`
	TasaISR       decimal.Decimal `json:"tasa_isr"` // porcentaje; default 30
	AplicarSaldos bool            `json:"aplicar_saldos"`
}

// DeclaracionResponse declaración calculada.
type DeclaracionResponse struct {
	ID                        string          `json:"id"`
	Tipo                      string          `json:"tipo"`
	Ejercicio                 int             `json:"ejercicio"`
	Mes                       int             `json:"mes"`
	IngresosAcumulados        decimal.Decimal `json:"ingresos_acumulados"`
	DeduccionesAcumuladas     decimal.Decimal `json:"deducciones_acumuladas"`
	ISRRetenidoAcumulado      decimal.Decimal `json:"isr_retenido_acumulado"`
	ISRCausado                decimal.Decimal `json:"isr_causado"`
	PagosProvisionalesPrevios decimal.Decimal `json:"pagos_provisionales_previos"`
	ISRCargo                  decimal.Decimal `json:"isr_cargo"`
	IVACargo                  decimal.Decimal `json:"iva_cargo"`
	SaldoAplicadoISR          decimal.Decimal `json:"saldo_aplicado_isr"`
	SaldoAplicadoIVA          decimal.Decimal `json:"saldo_aplicado_iva"`
	Estado                    string          `json:"estado"`
	FechaPresentacion         *time.Time      `json:"fecha_presentacion,omitempty"`
}
