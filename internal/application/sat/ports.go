package sat

import (
	"context"
	"time"
)

// Estados que reporta el servicio de consulta del SAT.
const (
	EstadoVigente      = "Vigente"
	EstadoCancelado    = "Cancelado"
	EstadoNoEncontrado = "No Encontrado"
	EstadoError        = "Error"
)

// ResultadoVerificacion respuesta normalizada de ConsultaCFDIService.
type ResultadoVerificacion struct {
	Estado             string // ver constantes Estado*
	EsCancelable       string
	EstatusCancelacion string
	Mensaje            string
}

// Verificador define el puerto de salida hacia el WS de consulta de estado de
// CFDI. Total debe formatearse con dos decimales fijos y sin separador de
// miles; es parte del contrato del servicio.
type Verificador interface {
	Verificar(ctx context.Context, uuid, rfcEmisor, rfcReceptor, total string) (*ResultadoVerificacion, error)
}

// EstadoSolicitudDescarga estado de una solicitud en el WS de descarga masiva.
type EstadoSolicitudDescarga struct {
	Terminada bool
	Rechazada bool
	Mensaje   string
	Paquetes  []string // IDs de paquetes listos
}

// Descargador define el puerto de salida hacia el WS de descarga masiva.
// La implementación firma cada solicitud con la FIEL del solicitante.
type Descargador interface {
	// Solicitar registra la solicitud y devuelve el folio asignado por el SAT.
	Solicitar(ctx context.Context, rfc, direccion string, desde, hasta time.Time) (string, error)
	// Estado consulta el avance de una solicitud previa.
	Estado(ctx context.Context, idSolicitud string) (*EstadoSolicitudDescarga, error)
	// Paquete descarga un paquete terminado: un ZIP con los XML del rango.
	Paquete(ctx context.Context, idPaquete string) ([]byte, error)
}
