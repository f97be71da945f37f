package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// CargarCFDIRequest sube uno o varios XML (contenido crudo por archivo).
type CargarCFDIRequest struct {
	Archivos map[string]string `json:"archivos" validate:"required"` // nombre -> xml
}

// CargarCFDIResponse resultado del lote.
type CargarCFDIResponse struct {
	Importados int               `json:"importados"`
	Duplicados int               `json:"duplicados"`
	Errores    []ErrorArchivoDTO `json:"errores,omitempty"`
	CFDIs      []*CFDIResponse   `json:"cfdis"`
}

// ErrorArchivoDTO error de un archivo del lote.
type ErrorArchivoDTO struct {
	Archivo string `json:"archivo"`
	Error   string `json:"error"`
}

// ClasificarCFDIRequest edición de clasificación fiscal por el contador.
// Los punteros distinguen "no enviado" de "enviado en cero/false".
type ClasificarCFDIRequest struct {
	EsDeducible  *bool            `json:"es_deducible"`
	MesDeduccion *int             `json:"mes_deduccion"` // 1-12, 13 = anual
	GravadoISR   *decimal.Decimal `json:"gravado_isr"`
	GravadoIVA   *decimal.Decimal `json:"gravado_iva"`
	Categoria    *string          `json:"categoria"`
	Bloquear     *bool            `json:"bloquear"`
}

// MarcarCanceladoRequest cambia el estado de cancelación manualmente.
type MarcarCanceladoRequest struct {
	Cancelado bool `json:"cancelado"`
}

// CFDIResponse proyección del comprobante para la API.
type CFDIResponse struct {
	ID                  string          `json:"id"`
	UUID                string          `json:"uuid"`
	UUIDSintetico       bool            `json:"uuid_sintetico,omitempty"`
	TipoDeComprobante   string          `json:"tipo_de_comprobante"`
	EsIngreso           bool            `json:"es_ingreso"`
	EsEgreso            bool            `json:"es_egreso"`
	EstaCancelado       bool            `json:"esta_cancelado"`
	Fecha               time.Time       `json:"fecha"`
	RFCEmisor           string          `json:"rfc_emisor"`
	NombreEmisor        string          `json:"nombre_emisor"`
	RFCReceptor         string          `json:"rfc_receptor"`
	NombreReceptor      string          `json:"nombre_receptor"`
	UsoCFDI             string          `json:"uso_cfdi"`
	MetodoPago          string          `json:"metodo_pago"`
	RequiereComplemento bool            `json:"requiere_complemento"`
	SubTotal            decimal.Decimal `json:"sub_total"`
	Total               decimal.Decimal `json:"total"`
	ImpuestoTrasladado  decimal.Decimal `json:"impuesto_trasladado"`
	IVARetenido         decimal.Decimal `json:"iva_retenido"`
	ISRRetenido         decimal.Decimal `json:"isr_retenido"`
	EsDeducible         bool            `json:"es_deducible"`
	MesDeduccion        int             `json:"mes_deduccion"`
	GravadoISR          decimal.Decimal `json:"gravado_isr"`
	GravadoIVA          decimal.Decimal `json:"gravado_iva"`
	GravadoModificado   bool            `json:"gravado_modificado"`
	Categoria           string          `json:"categoria"`
	Bloqueado           bool            `json:"bloqueado"`
}

// NewCFDIResponse proyecta la entidad.
func NewCFDIResponse(c *entity.CFDI) *CFDIResponse {
	return &CFDIResponse{
		ID:                  c.ID,
		UUID:                c.UUID,
		UUIDSintetico:       c.UUIDSintetico,
		TipoDeComprobante:   c.TipoDeComprobante,
		EsIngreso:           c.EsIngreso,
		EsEgreso:            c.EsEgreso,
		EstaCancelado:       c.EstaCancelado,
		Fecha:               c.Fecha,
		RFCEmisor:           c.RFCEmisor,
		NombreEmisor:        c.NombreEmisor,
		RFCReceptor:         c.RFCReceptor,
		NombreReceptor:      c.NombreReceptor,
		UsoCFDI:             c.UsoCFDI,
		MetodoPago:          c.MetodoPago,
		RequiereComplemento: c.EsPPDSinComplemento(),
		SubTotal:            c.SubTotal,
		Total:               c.Total,
		ImpuestoTrasladado:  c.ImpuestoTrasladado,
		IVARetenido:         c.IVARetenido,
		ISRRetenido:         c.ISRRetenido,
		EsDeducible:         c.EsDeducible,
		MesDeduccion:        c.MesDeduccion,
		GravadoISR:          c.GravadoISR,
		GravadoIVA:          c.GravadoIVA,
		GravadoModificado:   c.GravadoModificado,
		Categoria:           c.Categoria,
		Bloqueado:           c.Bloqueado,
	}
}
