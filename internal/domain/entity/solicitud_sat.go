package entity

import "time"

// Estados de una solicitud de descarga masiva ante el SAT.
const (
	SolicitudPendiente = "pendiente"  // creada localmente, aún sin enviar o sin paquetes
	SolicitudEnProceso = "en_proceso" // aceptada por el SAT, esperando paquetes
	SolicitudTerminada = "terminada"  // paquetes descargados y procesados
	SolicitudError     = "error"      // rechazada o fallida; requiere re-disparo manual
)

// SolicitudSAT representa una solicitud de descarga masiva de CFDI para un
// cliente y una dirección (emitidos o recibidos).
// Solo puede existir una solicitud no terminada por (cliente, dirección); el
// reclamo se hace con una escritura atómica en el repositorio, no con un lock.
type SolicitudSAT struct {
	ID         string
	ClienteID  string
	Direccion  string // DireccionEmitidos | DireccionRecibidos
	FechaDesde time.Time
	FechaHasta time.Time

	Estado         string
	IDSolicitudSAT string   // identificador devuelto por el WS del SAT
	Paquetes       []string // IDs de paquetes listos para descargar
	Mensaje        string   // detalle de rechazo o error

	CreatedAt time.Time
	UpdatedAt time.Time
}
