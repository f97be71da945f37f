// Cliente SOAP del servicio de consulta de estado de CFDI del SAT
// (ConsultaCFDIService). La expresión impresa lleva RFC emisor, RFC receptor,
// total y folio fiscal, igual que el QR del PDF.

package sat

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	appsat "github.com/kontia/kontia-api/internal/application/sat"
)

const (
	// AppEnvProd es el identificador de ambiente productivo SAT.
	AppEnvProd = "prod"
	// AppEnvDev es el identificador local: no llama al WS del SAT.
	AppEnvDev = "dev"

	consultaURLProd = "https://consultaqr.facturaelectronica.sat.gob.mx/ConsultaCFDIService.svc"

	soapNS         = "http://schemas.xmlsoap.org/soap/envelope/"
	soapNSTempuri  = "http://tempuri.org/"
	consultaAction = "http://tempuri.org/IConsultaCFDIService/Consulta"
)

var _ appsat.Verificador = (*ConsultaClient)(nil)

// ConsultaClient implementa el puerto Verificador usando el WS SOAP del SAT.
type ConsultaClient struct {
	httpClient *http.Client
	url        string
}

// NewConsultaClient construye el cliente con un timeout de red generoso (40 s);
// el WS del SAT suele tardar varios segundos en horario de cierre de mes.
// url vacío usa el endpoint productivo.
func NewConsultaClient(url string) *ConsultaClient {
	if url == "" {
		url = consultaURLProd
	}
	return &ConsultaClient{
		httpClient: &http.Client{Timeout: 40 * time.Second},
		url:        url,
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName xml.Name   `xml:"s:Envelope"`
	XmlnsS  string     `xml:"xmlns:s,attr"`
	Header  soapHeader `xml:"s:Header"`
	Body    soapBody   `xml:"s:Body"`
}

type soapHeader struct{}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "s:Body"
	e.EncodeToken(start)
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type consultaBody struct {
	XMLName          xml.Name `xml:"Consulta"`
	Xmlns            string   `xml:"xmlns,attr"`
	ExpresionImpresa string   `xml:"expresionImpresa"`
}

type consultaResponseEnvelope struct {
	Body consultaResponseBody `xml:"Body"`
}

type consultaResponseBody struct {
	ConsultaResponse *consultaResponse `xml:"ConsultaResponse"`
	Fault            *soapFault        `xml:"Fault"`
}

type consultaResponse struct {
	Result consultaResult `xml:"ConsultaResult"`
}

type consultaResult struct {
	CodigoEstatus      string `xml:"CodigoEstatus"`
	Estado             string `xml:"Estado"`
	EsCancelable       string `xml:"EsCancelable"`
	EstatusCancelacion string `xml:"EstatusCancelacion"`
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── Verificar ─────────────────────────────────────────────────────────────────

// Verificar consulta el estado del folio fiscal en el SAT. total debe venir ya
// formateado con dos decimales fijos y sin separador de miles.
func (c *ConsultaClient) Verificar(ctx context.Context, uuid, rfcEmisor, rfcReceptor, total string) (*appsat.ResultadoVerificacion, error) {
	expresion := fmt.Sprintf("?re=%s&rr=%s&tt=%s&id=%s", rfcEmisor, rfcReceptor, total, uuid)

	envelope := soapEnvelope{
		XmlnsS: soapNS,
		Body: soapBody{Content: &consultaBody{
			Xmlns:            soapNSTempuri,
			ExpresionImpresa: expresion,
		}},
	}
	xmlPayload, err := xml.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(xmlPayload))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", consultaAction)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("soap: timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("soap: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // max 1 MB
	if err != nil {
		return nil, fmt.Errorf("soap: leer respuesta: %w", err)
	}
	return parseConsultaResponse(rawBody)
}

func parseConsultaResponse(rawBody []byte) (*appsat.ResultadoVerificacion, error) {
	var envResp consultaResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return &appsat.ResultadoVerificacion{
			Estado:  appsat.EstadoError,
			Mensaje: fmt.Sprintf("no se pudo parsear respuesta SOAP: %s", string(rawBody)),
		}, nil
	}
	if envResp.Body.Fault != nil {
		return &appsat.ResultadoVerificacion{
			Estado:  appsat.EstadoError,
			Mensaje: fmt.Sprintf("SOAP Fault [%s]: %s", envResp.Body.Fault.FaultCode, envResp.Body.Fault.FaultString),
		}, nil
	}
	if envResp.Body.ConsultaResponse == nil {
		return &appsat.ResultadoVerificacion{
			Estado:  appsat.EstadoError,
			Mensaje: "respuesta SOAP sin ConsultaResponse",
		}, nil
	}

	result := envResp.Body.ConsultaResponse.Result
	return &appsat.ResultadoVerificacion{
		Estado:             normalizaEstado(result.Estado),
		EsCancelable:       result.EsCancelable,
		EstatusCancelacion: result.EstatusCancelacion,
		Mensaje:            result.CodigoEstatus,
	}, nil
}

// normalizaEstado mapea la respuesta textual del SAT a las constantes internas.
// "N - 602: No Encontrado" y variantes se reportan como No Encontrado.
func normalizaEstado(estado string) string {
	switch strings.TrimSpace(estado) {
	case "Vigente":
		return appsat.EstadoVigente
	case "Cancelado":
		return appsat.EstadoCancelado
	case "", "No Encontrado", "NoEncontrado":
		return appsat.EstadoNoEncontrado
	default:
		return appsat.EstadoNoEncontrado
	}
}
