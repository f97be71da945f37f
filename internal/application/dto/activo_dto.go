package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrearActivoRequest alta de activo fijo.
type CrearActivoRequest struct {
	Nombre             string           `json:"nombre" validate:"required"`
	Descripcion        string           `json:"descripcion"`
	Costo              decimal.Decimal  `json:"costo" validate:"required"`
	ValorResidual      decimal.Decimal  `json:"valor_residual"`
	VidaUtilMeses      int              `json:"vida_util_meses" validate:"required,min=1"`
	TasaDeduccionAnual *decimal.Decimal `json:"tasa_deduccion_anual"`
	FechaCompra        time.Time        `json:"fecha_compra" validate:"required"`
}

// DisponerActivoRequest cambia el estado del activo (vendido o baja).
type DisponerActivoRequest struct {
	Estado string `json:"estado" validate:"required,oneof=vendido baja"`
}

// ActivoResponse activo con su valuación vigente.
type ActivoResponse struct {
	ID                    string           `json:"id"`
	Nombre                string           `json:"nombre"`
	Costo                 decimal.Decimal  `json:"costo"`
	ValorResidual         decimal.Decimal  `json:"valor_residual"`
	VidaUtilMeses         int              `json:"vida_util_meses"`
	TasaDeduccionAnual    *decimal.Decimal `json:"tasa_deduccion_anual,omitempty"`
	FechaCompra           time.Time        `json:"fecha_compra"`
	Estado                string           `json:"estado"`
	MontoMensual          decimal.Decimal  `json:"monto_mensual"`
	DepreciacionAcumulada decimal.Decimal  `json:"depreciacion_acumulada"`
	ValorActual           decimal.Decimal  `json:"valor_actual"`
}

// PeriodoDepreciacionDTO renglón del calendario.
type PeriodoDepreciacionDTO struct {
	Ejercicio        int             `json:"ejercicio"`
	Mes              int             `json:"mes"`
	Monto            decimal.Decimal `json:"monto"`
	AcumuladaAntes   decimal.Decimal `json:"acumulada_antes"`
	AcumuladaDespues decimal.Decimal `json:"acumulada_despues"`
	ValorAntes       decimal.Decimal `json:"valor_antes"`
	ValorDespues     decimal.Decimal `json:"valor_despues"`
}
