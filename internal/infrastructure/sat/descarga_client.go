// Cliente SOAP del WS de descarga masiva de CFDI del SAT. Tres servicios:
// autenticación (token temporal), solicitud/verificación y descarga de
// paquetes. Todas las operaciones van firmadas con la FIEL del solicitante.

package sat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appsat "github.com/kontia/kontia-api/internal/application/sat"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

const (
	autenticaURL     = "https://cfdidescargamasivasolicitud.clouda.sat.gob.mx/Autenticacion/Autenticacion.svc"
	solicitudURL     = "https://cfdidescargamasivasolicitud.clouda.sat.gob.mx/SolicitaDescargaService.svc"
	verificaURL      = "https://cfdidescargamasivasolicitud.clouda.sat.gob.mx/VerificaSolicitudDescargaService.svc"
	descargaURL      = "https://cfdidescargamasiva.clouda.sat.gob.mx/DescargaMasivaTercerosService.svc"
	nsDescargaMasiva = "http://DescargaMasivaTerceros.sat.gob.mx"

	autenticaAction = "http://DescargaMasivaTerceros.gob.mx/IAutenticacion/Autentica"
	solicitudAction = "http://DescargaMasivaTerceros.sat.gob.mx/ISolicitaDescargaService/SolicitaDescarga"
	verificaAction  = "http://DescargaMasivaTerceros.sat.gob.mx/IVerificaSolicitudDescargaService/VerificaSolicitudDescarga"
	descargarAction = "http://DescargaMasivaTerceros.sat.gob.mx/IDescargaMasivaTercerosService/Descargar"
)

// Códigos de estado que reporta VerificaSolicitudDescarga.
const (
	estadoSolicitudAceptada  = 1
	estadoSolicitudEnProceso = 2
	estadoSolicitudTerminada = 3
	estadoSolicitudError     = 4
	estadoSolicitudRechazada = 5
	estadoSolicitudVencida   = 6
)

var _ appsat.Descargador = (*DescargaClient)(nil)

// DescargaClient implementa el puerto Descargador contra el WS del SAT.
// Cachea el token de autenticación; el SAT lo expide por unos minutos y
// penaliza autenticar en cada llamada.
type DescargaClient struct {
	httpClient *http.Client
	fiel       *Fiel

	mu         sync.Mutex
	token      string
	tokenHasta time.Time
}

// NewDescargaClient construye el cliente. fiel puede ser nil solo en dev; en
// ese caso toda operación retorna error.
func NewDescargaClient(fiel *Fiel) *DescargaClient {
	return &DescargaClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		fiel:       fiel,
	}
}

// ── Solicitar ─────────────────────────────────────────────────────────────────

// Solicitar registra una solicitud de descarga para el RFC y devuelve el folio
// asignado por el SAT.
func (c *DescargaClient) Solicitar(ctx context.Context, rfc, direccion string, desde, hasta time.Time) (string, error) {
	if c.fiel == nil {
		return "", fmt.Errorf("descarga masiva requiere e.firma configurada")
	}
	token, err := c.autentica(ctx)
	if err != nil {
		return "", err
	}

	var atributoRFC string
	if direccion == entity.DireccionEmitidos {
		atributoRFC = fmt.Sprintf(`RfcEmisor="%s"`, rfc)
	} else {
		atributoRFC = fmt.Sprintf(`RfcReceptor="%s"`, rfc)
	}
	solicitud := fmt.Sprintf(
		`<des:solicitud xmlns:des="%s" FechaInicial="%s" FechaFinal="%s" %s RfcSolicitante="%s" TipoSolicitud="CFDI"></des:solicitud>`,
		nsDescargaMasiva,
		desde.Format("2006-01-02T15:04:05"),
		hasta.Format("2006-01-02T15:04:05"),
		atributoRFC, rfc,
	)
	firmada, err := c.fiel.FirmarNodo([]byte(solicitud))
	if err != nil {
		return "", fmt.Errorf("firmar solicitud: %w", err)
	}

	body := fmt.Sprintf(
		`<des:SolicitaDescarga xmlns:des="%s">%s</des:SolicitaDescarga>`,
		nsDescargaMasiva, string(firmada),
	)
	raw, err := c.llamar(ctx, solicitudURL, solicitudAction, token, body)
	if err != nil {
		return "", err
	}

	var resp solicitaDescargaResponse
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("parsear respuesta de solicitud: %w", err)
	}
	r := resp.Body.Response.Result
	if r.IDSolicitud == "" {
		return "", fmt.Errorf("solicitud rechazada por el SAT [%s]: %s", r.CodEstatus, r.Mensaje)
	}
	return r.IDSolicitud, nil
}

// ── Estado ────────────────────────────────────────────────────────────────────

// Estado consulta el avance de una solicitud previa.
func (c *DescargaClient) Estado(ctx context.Context, idSolicitud string) (*appsat.EstadoSolicitudDescarga, error) {
	if c.fiel == nil {
		return nil, fmt.Errorf("descarga masiva requiere e.firma configurada")
	}
	token, err := c.autentica(ctx)
	if err != nil {
		return nil, err
	}

	rfc := c.fiel.RFC()
	nodo := fmt.Sprintf(
		`<des:solicitud xmlns:des="%s" IdSolicitud="%s" RfcSolicitante="%s"></des:solicitud>`,
		nsDescargaMasiva, idSolicitud, rfc,
	)
	firmada, err := c.fiel.FirmarNodo([]byte(nodo))
	if err != nil {
		return nil, fmt.Errorf("firmar verificación: %w", err)
	}
	body := fmt.Sprintf(
		`<des:VerificaSolicitudDescarga xmlns:des="%s">%s</des:VerificaSolicitudDescarga>`,
		nsDescargaMasiva, string(firmada),
	)
	raw, err := c.llamar(ctx, verificaURL, verificaAction, token, body)
	if err != nil {
		return nil, err
	}

	var resp verificaResponse
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsear respuesta de verificación: %w", err)
	}
	r := resp.Body.Response.Result
	estado := &appsat.EstadoSolicitudDescarga{Mensaje: r.Mensaje}
	switch r.EstadoSolicitud {
	case estadoSolicitudTerminada:
		estado.Terminada = true
		estado.Paquetes = r.IDsPaquetes
	case estadoSolicitudError, estadoSolicitudRechazada, estadoSolicitudVencida:
		estado.Rechazada = true
		if estado.Mensaje == "" {
			estado.Mensaje = fmt.Sprintf("solicitud en estado %d [%s]", r.EstadoSolicitud, r.CodEstatus)
		}
	}
	return estado, nil
}

// ── Paquete ───────────────────────────────────────────────────────────────────

// Paquete descarga un paquete terminado: un ZIP (Base64 en la respuesta) con
// los XML del rango solicitado.
func (c *DescargaClient) Paquete(ctx context.Context, idPaquete string) ([]byte, error) {
	if c.fiel == nil {
		return nil, fmt.Errorf("descarga masiva requiere e.firma configurada")
	}
	token, err := c.autentica(ctx)
	if err != nil {
		return nil, err
	}

	nodo := fmt.Sprintf(
		`<des:peticionDescarga xmlns:des="%s" IdPaquete="%s" RfcSolicitante="%s"></des:peticionDescarga>`,
		nsDescargaMasiva, idPaquete, c.fiel.RFC(),
	)
	firmada, err := c.fiel.FirmarNodo([]byte(nodo))
	if err != nil {
		return nil, fmt.Errorf("firmar descarga: %w", err)
	}
	body := fmt.Sprintf(
		`<des:PeticionDescargaMasivaTercerosEntrada xmlns:des="%s">%s</des:PeticionDescargaMasivaTercerosEntrada>`,
		nsDescargaMasiva, string(firmada),
	)
	raw, err := c.llamar(ctx, descargaURL, descargarAction, token, body)
	if err != nil {
		return nil, err
	}

	var resp descargaResponse
	if err := xml.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("parsear respuesta de descarga: %w", err)
	}
	if resp.Body.Response.Paquete == "" {
		return nil, fmt.Errorf("el SAT no devolvió el paquete %s", idPaquete)
	}
	data, err := base64.StdEncoding.DecodeString(resp.Body.Response.Paquete)
	if err != nil {
		return nil, fmt.Errorf("decodificar paquete: %w", err)
	}
	return data, nil
}

// ── Autenticación ─────────────────────────────────────────────────────────────

// autentica obtiene (o reutiliza) el token temporal del servicio. El token se
// renueva un minuto antes de su vencimiento nominal.
func (c *DescargaClient) autentica(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenHasta) {
		return c.token, nil
	}

	created := time.Now().UTC()
	expires := created.Add(5 * time.Minute)
	timestamp := fmt.Sprintf(
		`<u:Timestamp xmlns:u="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-utility-1.0.xsd" u:Id="_0"><u:Created>%s</u:Created><u:Expires>%s</u:Expires></u:Timestamp>`,
		created.Format("2006-01-02T15:04:05.000Z"),
		expires.Format("2006-01-02T15:04:05.000Z"),
	)
	firmado, err := c.fiel.FirmarNodo([]byte(timestamp))
	if err != nil {
		return "", fmt.Errorf("firmar timestamp: %w", err)
	}

	envelope := fmt.Sprintf(
		`<s:Envelope xmlns:s="%s"><s:Header><o:Security xmlns:o="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd" s:mustUnderstand="1">%s</o:Security></s:Header><s:Body><Autentica xmlns="http://DescargaMasivaTerceros.gob.mx"/></s:Body></s:Envelope>`,
		soapNS, string(firmado),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, autenticaURL, strings.NewReader(envelope))
	if err != nil {
		return "", fmt.Errorf("crear request de autenticación: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", autenticaAction)
	req.Header.Set("uuid", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("autenticar contra el SAT: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("leer respuesta de autenticación: %w", err)
	}

	var ar autenticaResponse
	if err := xml.Unmarshal(raw, &ar); err != nil {
		return "", fmt.Errorf("parsear respuesta de autenticación: %w", err)
	}
	if ar.Body.Fault != nil {
		return "", fmt.Errorf("SOAP Fault [%s]: %s", ar.Body.Fault.FaultCode, ar.Body.Fault.FaultString)
	}
	if ar.Body.Response.Token == "" {
		return "", fmt.Errorf("autenticación sin token")
	}
	c.token = ar.Body.Response.Token
	c.tokenHasta = expires.Add(-1 * time.Minute)
	return c.token, nil
}

// llamar arma el sobre SOAP, agrega el token WRAP y devuelve el cuerpo crudo.
func (c *DescargaClient) llamar(ctx context.Context, url, action, token, body string) ([]byte, error) {
	envelope := fmt.Sprintf(
		`<s:Envelope xmlns:s="%s"><s:Header/><s:Body>%s</s:Body></s:Envelope>`,
		soapNS, body,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(envelope)))
	if err != nil {
		return nil, fmt.Errorf("crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)
	req.Header.Set("Authorization", `WRAP access_token="`+token+`"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("timeout o cancelación: %w", ctx.Err())
		}
		return nil, fmt.Errorf("llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	// Los paquetes pueden pesar decenas de MB.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256<<20))
	if err != nil {
		return nil, fmt.Errorf("leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("el SAT respondió %d: %s", resp.StatusCode, truncate(string(raw), 300))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// ── Estructuras de respuesta ──────────────────────────────────────────────────

type autenticaResponse struct {
	Body struct {
		Response struct {
			Token string `xml:"AutenticaResult"`
		} `xml:"AutenticaResponse"`
		Fault *soapFault `xml:"Fault"`
	} `xml:"Body"`
}

type solicitaDescargaResponse struct {
	Body struct {
		Response struct {
			Result struct {
				IDSolicitud string `xml:"IdSolicitud,attr"`
				CodEstatus  string `xml:"CodEstatus,attr"`
				Mensaje     string `xml:"Mensaje,attr"`
			} `xml:"SolicitaDescargaResult"`
		} `xml:"SolicitaDescargaResponse"`
	} `xml:"Body"`
}

type verificaResponse struct {
	Body struct {
		Response struct {
			Result struct {
				EstadoSolicitud int      `xml:"EstadoSolicitud,attr"`
				CodEstatus      string   `xml:"CodEstatus,attr"`
				Mensaje         string   `xml:"Mensaje,attr"`
				IDsPaquetes     []string `xml:"IdsPaquetes"`
			} `xml:"VerificaSolicitudDescargaResult"`
		} `xml:"VerificaSolicitudDescargaResponse"`
	} `xml:"Body"`
}

type descargaResponse struct {
	Body struct {
		Response struct {
			Paquete string `xml:"Paquete"`
		} `xml:"RespuestaDescargaMasivaTercerosSalida"`
	} `xml:"Body"`
}
