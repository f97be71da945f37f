package sat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsat "github.com/kontia/kontia-api/internal/application/sat"
)

const respuestaVigente = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <ConsultaResponse xmlns="http://tempuri.org/">
      <ConsultaResult xmlns:a="http://schemas.datacontract.org/2004/07/Sat.Cfdi.Negocio.ConsultaCfdi.Servicio">
        <a:CodigoEstatus>S - Comprobante obtenido satisfactoriamente.</a:CodigoEstatus>
        <a:EsCancelable>Cancelable sin aceptación</a:EsCancelable>
        <a:Estado>Vigente</a:Estado>
        <a:EstatusCancelacion/>
      </ConsultaResult>
    </ConsultaResponse>
  </s:Body>
</s:Envelope>`

const respuestaFault = `<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/">
  <s:Body>
    <s:Fault>
      <faultcode>s:Client</faultcode>
      <faultstring>ExpresionImpresa no válida</faultstring>
    </s:Fault>
  </s:Body>
</s:Envelope>`

func TestParseConsultaResponse_Vigente(t *testing.T) {
	res, err := parseConsultaResponse([]byte(respuestaVigente))
	require.NoError(t, err)
	assert.Equal(t, appsat.EstadoVigente, res.Estado)
	assert.Equal(t, "Cancelable sin aceptación", res.EsCancelable)
	assert.Contains(t, res.Mensaje, "satisfactoriamente")
}

func TestParseConsultaResponse_FaultNoEsExcepcion(t *testing.T) {
	res, err := parseConsultaResponse([]byte(respuestaFault))
	require.NoError(t, err)
	assert.Equal(t, appsat.EstadoError, res.Estado)
	assert.Contains(t, res.Mensaje, "ExpresionImpresa")
}

func TestParseConsultaResponse_BasuraNoEsExcepcion(t *testing.T) {
	res, err := parseConsultaResponse([]byte("<<< esto no es xml"))
	require.NoError(t, err)
	assert.Equal(t, appsat.EstadoError, res.Estado)
}

func TestNormalizaEstado(t *testing.T) {
	assert.Equal(t, appsat.EstadoVigente, normalizaEstado("Vigente"))
	assert.Equal(t, appsat.EstadoCancelado, normalizaEstado("Cancelado"))
	assert.Equal(t, appsat.EstadoNoEncontrado, normalizaEstado("No Encontrado"))
	assert.Equal(t, appsat.EstadoNoEncontrado, normalizaEstado(""))
}
