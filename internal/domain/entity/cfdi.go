package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de comprobante según el atributo TipoDeComprobante del CFDI.
const (
	TipoIngreso  = "I"
	TipoEgreso   = "E"
	TipoPago     = "P"
	TipoNomina   = "N"
	TipoTraslado = "T"
)

// Métodos de pago CFDI.
const (
	MetodoPUE = "PUE" // Pago en una sola exhibición
	MetodoPPD = "PPD" // Pago en parcialidades o diferido
)

// Códigos de impuesto del catálogo c_Impuesto del SAT.
const (
	ImpuestoISR  = "001"
	ImpuestoIVA  = "002"
	ImpuestoIEPS = "003"
)

// MesDeduccionAnual marca un CFDI como deducción anual: se excluye de las tablas
// mensuales y solo participa en la declaración del ejercicio.
const MesDeduccionAnual = 13

// CFDI representa un comprobante fiscal normalizado a partir del XML timbrado.
// El folio fiscal (UUID) es la llave natural; ID es la llave interna.
type CFDI struct {
	ID        string
	ClienteID string
	UUID      string // Folio fiscal asignado por el SAT (TimbreFiscalDigital)

	// UUIDSintetico indica que el XML no traía folio fiscal y se generó uno
	// localmente. Es una condición de calidad de datos, no un estado normal.
	UUIDSintetico bool

	Version           string // 3.3 o 4.0
	TipoDeComprobante string // ver constantes Tipo*
	EsIngreso         bool
	EsEgreso          bool
	EstaCancelado     bool
	Fecha             time.Time
	Serie             string
	Folio             string

	RFCEmisor             string
	NombreEmisor          string
	RegimenFiscalEmisor   string
	RFCReceptor           string
	NombreReceptor        string
	RegimenFiscalReceptor string
	UsoCFDI               string

	MetodoPago string // PUE | PPD
	FormaPago  string
	Moneda     string

	// Complementos de pago (UUIDs de CFDI tipo P) que saldan esta factura PPD.
	DocsRelacionadosComplementoPago []string

	SubTotal           decimal.Decimal
	Descuento          decimal.Decimal
	Total              decimal.Decimal
	ImpuestoTrasladado decimal.Decimal // IVA trasladado (002)
	IEPSTrasladado     decimal.Decimal // IEPS trasladado (003)
	IVARetenido        decimal.Decimal // retención 002
	ISRRetenido        decimal.Decimal // retención 001

	// Clasificación fiscal editable por el contador; no se deriva del XML.
	EsDeducible       bool
	MesDeduccion      int // 1-12, 13 = anual, 0 = sin asignar
	GravadoISR        decimal.Decimal
	GravadoIVA        decimal.Decimal
	GravadoModificado bool // true = valores capturados a mano, no recalcular
	Categoria         string
	Bloqueado         bool // congela cualquier edición de clasificación

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EsPPDSinComplemento indica que la factura es PPD y aún no tiene ningún
// complemento de pago ligado: no debe considerarse pagada.
func (c *CFDI) EsPPDSinComplemento() bool {
	return c.MetodoPago == MetodoPPD && len(c.DocsRelacionadosComplementoPago) == 0
}

// DeducibleEnMes indica si el CFDI participa en los totales del mes dado.
func (c *CFDI) DeducibleEnMes(mes int) bool {
	return !c.EstaCancelado && c.EsDeducible && c.MesDeduccion == mes && mes >= 1 && mes <= 12
}

// NormalizaRFC limpia un RFC para comparación: sin espacios y en mayúsculas.
func NormalizaRFC(rfc string) string {
	return strings.ToUpper(strings.TrimSpace(rfc))
}

// TipoComprobanteDesdeCodigo mapea el código del atributo TipoDeComprobante al
// tipo interno. Los códigos no reconocidos se tratan como Ingreso; es el
// comportamiento histórico con datos legados y está cubierto por tests.
func TipoComprobanteDesdeCodigo(codigo string) string {
	switch strings.ToUpper(strings.TrimSpace(codigo)) {
	case TipoIngreso:
		return TipoIngreso
	case TipoEgreso:
		return TipoEgreso
	case TipoPago:
		return TipoPago
	case TipoNomina:
		return TipoNomina
	case TipoTraslado:
		return TipoTraslado
	default:
		return TipoIngreso
	}
}
