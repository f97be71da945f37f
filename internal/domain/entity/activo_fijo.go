package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un activo fijo.
const (
	ActivoEstadoActivo     = "activo"
	ActivoEstadoDepreciado = "depreciado" // llegó a su valor residual
	ActivoEstadoVendido    = "vendido"
	ActivoEstadoBaja       = "baja"
)

// ActivoFijo representa un bien depreciable del cliente.
// El monto mensual de depreciación es constante durante toda la vida útil
// (línea recta); el valor en libros nunca baja del valor residual.
type ActivoFijo struct {
	ID            string
	ClienteID     string
	Nombre        string
	Descripcion   string
	Costo         decimal.Decimal
	ValorResidual decimal.Decimal
	VidaUtilMeses int
	// TasaDeduccionAnual es el porcentaje anual de deducción fiscal (LISR).
	// Si es nil se usa línea recta sobre (costo - residual) / vida útil.
	TasaDeduccionAnual *decimal.Decimal
	FechaCompra        time.Time
	Estado             string

	// Últimos valores materializados; para activos no vigentes (vendido/baja)
	// se reportan tal cual en lugar de recalcular.
	DepreciacionAcumulada decimal.Decimal
	ValorActual           decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EsVigente indica si el activo sigue depreciándose.
func (a *ActivoFijo) EsVigente() bool {
	return a.Estado == ActivoEstadoActivo
}
