package cfdi_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/domain/cfdi"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures: CFDI 4.0 de honorarios con IVA trasladado y retenciones de ISR e
// IVA, timbrado. Los montos cuadran: 1000 + 160 - 100 - 106.67 = 953.33.
// ──────────────────────────────────────────────────────────────────────────────

const (
	rfcEmisor   = "AAA010101AAA"
	rfcReceptor = "BBB020202BB2"
	uuidTimbre  = "AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001"
)

const xmlHonorarios = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
  Version="4.0" Serie="A" Folio="1234" Fecha="2024-03-15T10:30:00"
  SubTotal="1000.00" Total="953.33" Moneda="MXN" TipoDeComprobante="I"
  MetodoPago="PUE" FormaPago="03" LugarExpedicion="64000">
  <cfdi:Emisor Rfc="AAA010101AAA" Nombre="Servicios Profesionales Norte" RegimenFiscal="612"/>
  <cfdi:Receptor Rfc="BBB020202BB2" Nombre="Comercializadora del Centro" UsoCFDI="G03" RegimenFiscalReceptor="601" DomicilioFiscalReceptor="64000"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="80141600" Cantidad="1" Descripcion="Honorarios marzo" ValorUnitario="1000.00" Importe="1000.00" ObjetoImp="02">
      <cfdi:Impuestos>
        <cfdi:Traslados>
          <cfdi:Traslado Base="1000.00" Impuesto="002" TipoFactor="Tasa" TasaOCuota="0.160000" Importe="160.00"/>
        </cfdi:Traslados>
        <cfdi:Retenciones>
          <cfdi:Retencion Base="1000.00" Impuesto="001" TipoFactor="Tasa" TasaOCuota="0.100000" Importe="100.00"/>
          <cfdi:Retencion Base="1000.00" Impuesto="002" TipoFactor="Tasa" TasaOCuota="0.106667" Importe="106.67"/>
        </cfdi:Retenciones>
      </cfdi:Impuestos>
    </cfdi:Concepto>
  </cfdi:Conceptos>
  <cfdi:Impuestos TotalImpuestosRetenidos="206.67" TotalImpuestosTrasladados="160.00">
    <cfdi:Traslados>
      <cfdi:Traslado Base="1000.00" Impuesto="002" TipoFactor="Tasa" TasaOCuota="0.160000" Importe="160.00"/>
    </cfdi:Traslados>
  </cfdi:Impuestos>
  <cfdi:Complemento>
    <tfd:TimbreFiscalDigital Version="1.1" UUID="AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001" FechaTimbrado="2024-03-15T10:31:02" RfcProvCertif="SAT970701NN3"/>
  </cfdi:Complemento>
</cfdi:Comprobante>`

func parseHonorarios(t *testing.T, clienteRFC string) *entity.CFDI {
	t.Helper()
	c, err := cfdi.NewParser().Parse([]byte(xmlHonorarios), "cliente-1", clienteRFC)
	require.NoError(t, err)
	return c
}

// ──────────────────────────────────────────────────────────────────────────────
// Parseo básico y dirección
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_IngresoParaElEmisor(t *testing.T) {
	c := parseHonorarios(t, rfcEmisor)

	assert.True(t, c.EsIngreso, "el emisor ve el comprobante como ingreso")
	assert.False(t, c.EsEgreso)
	assert.Equal(t, uuidTimbre, c.UUID, "el folio fiscal viene del TimbreFiscalDigital")
	assert.False(t, c.UUIDSintetico)
	assert.Equal(t, entity.TipoIngreso, c.TipoDeComprobante)
	assert.Equal(t, entity.MetodoPUE, c.MetodoPago)
	assert.Equal(t, "G03", c.UsoCFDI)
	assert.Equal(t, 2024, c.Fecha.Year())
	assert.True(t, c.SubTotal.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, c.Total.Equal(decimal.RequireFromString("953.33")))
}

func TestParse_EgresoParaElReceptor(t *testing.T) {
	c := parseHonorarios(t, "  bbb020202bb2 ") // RFC sin normalizar a propósito

	assert.True(t, c.EsEgreso, "el receptor ve el comprobante como egreso")
	assert.False(t, c.EsIngreso)
}

func TestParse_ComprobanteAjenoEsRechazado(t *testing.T) {
	_, err := cfdi.NewParser().Parse([]byte(xmlHonorarios), "cliente-1", "ZZZ990101ZZ9")
	require.Error(t, err)
	assert.ErrorIs(t, err, cfdi.ErrCFDIAjeno,
		"si ni emisor ni receptor coinciden con el cliente, el documento se rechaza")
}

func TestParse_XMLMalformado(t *testing.T) {
	_, err := cfdi.NewParser().Parse([]byte("<cfdi:Comprobante"), "c", rfcEmisor)
	assert.ErrorIs(t, err, cfdi.ErrXMLInvalido)
}

func TestParse_SinNodoComprobante(t *testing.T) {
	_, err := cfdi.NewParser().Parse([]byte(`<factura Total="1"/>`), "c", rfcEmisor)
	assert.ErrorIs(t, err, cfdi.ErrComprobanteAusente)
}

// ──────────────────────────────────────────────────────────────────────────────
// Impuestos por código de catálogo (001 ISR, 002 IVA, 003 IEPS)
// ──────────────────────────────────────────────────────────────────────────────

func TestParse_SumaImpuestosPorCodigo(t *testing.T) {
	c := parseHonorarios(t, rfcEmisor)

	assert.True(t, c.ImpuestoTrasladado.Equal(decimal.RequireFromString("160.00")),
		"IVA trasladado (002)")
	assert.True(t, c.ISRRetenido.Equal(decimal.RequireFromString("100.00")),
		"ISR retenido (001)")
	assert.True(t, c.IVARetenido.Equal(decimal.RequireFromString("106.67")),
		"IVA retenido (002)")
	assert.True(t, c.IEPSTrasladado.IsZero())
}

// TestParse_RoundTripTraslados: la suma de traslados por concepto debe coincidir
// con el atributo TotalImpuestosTrasladados del comprobante (tolerancia 0.01).
func TestParse_RoundTripTraslados(t *testing.T) {
	c := parseHonorarios(t, rfcEmisor)

	declarado := decimal.RequireFromString("160.00")
	diferencia := c.ImpuestoTrasladado.Add(c.IEPSTrasladado).Sub(declarado).Abs()
	assert.True(t, diferencia.LessThanOrEqual(decimal.RequireFromString("0.01")),
		"la suma de traslados por concepto debe cuadrar con el total declarado")
}

// ──────────────────────────────────────────────────────────────────────────────
// Derivación de bases gravables
// ──────────────────────────────────────────────────────────────────────────────

func TestDerivarGravado_RelacionConLaTasa(t *testing.T) {
	gISR, gIVA := cfdi.DerivarGravado(decimal.RequireFromString("160.00"))

	assert.True(t, gISR.Equal(decimal.RequireFromString("1000.00")),
		"gravadoISR = trasladado / 0.16")
	assert.True(t, gIVA.Equal(decimal.RequireFromString("160.00")),
		"gravadoIVA = gravadoISR * 0.16")
}

func TestDerivarGravado_RedondeoADosDecimales(t *testing.T) {
	gISR, gIVA := cfdi.DerivarGravado(decimal.RequireFromString("100.00"))

	assert.True(t, gISR.Equal(decimal.RequireFromString("625.00")), "100 / 0.16 = 625")
	assert.True(t, gIVA.Equal(decimal.RequireFromString("100.00")))

	gISR, _ = cfdi.DerivarGravado(decimal.RequireFromString("0.10"))
	assert.True(t, gISR.Equal(decimal.RequireFromString("0.63")), "0.625 redondea a 0.63")
}

func TestParse_DerivaGravadosDelTraslado(t *testing.T) {
	c := parseHonorarios(t, rfcEmisor)

	assert.True(t, c.GravadoISR.Equal(decimal.RequireFromString("1000.00")))
	assert.True(t, c.GravadoIVA.Equal(decimal.RequireFromString("160.00")))
	assert.False(t, c.GravadoModificado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Política explícita: tipos no reconocidos y UUID ausente
// ──────────────────────────────────────────────────────────────────────────────

func TestTipoComprobanteDesdeCodigo_DesconocidoEsIngreso(t *testing.T) {
	// Comportamiento heredado con datos legados: se conserva, pero explícito.
	assert.Equal(t, entity.TipoIngreso, entity.TipoComprobanteDesdeCodigo("X"))
	assert.Equal(t, entity.TipoIngreso, entity.TipoComprobanteDesdeCodigo(""))
	assert.Equal(t, entity.TipoEgreso, entity.TipoComprobanteDesdeCodigo("e"))
	assert.Equal(t, entity.TipoNomina, entity.TipoComprobanteDesdeCodigo(" N "))
}

func TestParse_SinUUIDGeneraSinteticoYSeMarca(t *testing.T) {
	sinTimbre := strings.Replace(xmlHonorarios,
		`UUID="AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001" `, "", 1)
	c, err := cfdi.NewParser().Parse([]byte(sinTimbre), "cliente-1", rfcEmisor)
	require.NoError(t, err)

	assert.NotEmpty(t, c.UUID, "siempre hay un identificador")
	assert.True(t, c.UUIDSintetico,
		"un UUID generado localmente es una condición de calidad de datos y debe marcarse")
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestParseBatch_DeduplicaPorUUID(t *testing.T) {
	files := map[string][]byte{
		"factura.xml":       []byte(xmlHonorarios),
		"factura-copia.xml": []byte(xmlHonorarios),
	}
	cfdis, fallas := cfdi.NewParser().ParseBatch(files, "cliente-1", rfcEmisor)

	assert.Empty(t, fallas, "un duplicado no es un error")
	require.Len(t, cfdis, 1, "el mismo UUID dos veces produce exactamente un registro")
	assert.Equal(t, uuidTimbre, cfdis[0].UUID)
}

func TestParseBatch_AcumulaErroresSinDetenerElLote(t *testing.T) {
	files := map[string][]byte{
		"buena.xml": []byte(xmlHonorarios),
		"rota.xml":  []byte("no es xml"),
		"ajena.xml": []byte(strings.ReplaceAll(strings.ReplaceAll(xmlHonorarios, rfcEmisor, "CCC030303CC3"), rfcReceptor, "DDD040404DD4")),
	}
	cfdis, fallas := cfdi.NewParser().ParseBatch(files, "cliente-1", rfcEmisor)

	assert.Len(t, cfdis, 1)
	require.Len(t, fallas, 2)
	for _, f := range fallas {
		assert.Error(t, f.Err, fmt.Sprintf("archivo %s debe reportar su error", f.Archivo))
	}
}
