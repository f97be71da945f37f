package dto

import "time"

// VerificarCFDIResponse resultado de la verificación ante el SAT.
// Status es "Vigente", "Cancelado", "No Encontrado" o "Error"; los errores del
// WS se reportan aquí, nunca como excepción hacia el cliente HTTP.
type VerificarCFDIResponse struct {
	UUID               string `json:"uuid"`
	Status             string `json:"status"`
	EsCancelable       string `json:"es_cancelable,omitempty"`
	EstatusCancelacion string `json:"estatus_cancelacion,omitempty"`
	Mensaje            string `json:"mensaje,omitempty"`
}

// SolicitarSyncRequest dispara una descarga masiva para el cliente.
type SolicitarSyncRequest struct {
	Direccion  string    `json:"direccion" validate:"required,oneof=emitidos recibidos"`
	FechaDesde time.Time `json:"fecha_desde"`
	FechaHasta time.Time `json:"fecha_hasta"`
}

// SolicitudSATResponse estado de una solicitud de descarga.
type SolicitudSATResponse struct {
	ID             string    `json:"id"`
	Direccion      string    `json:"direccion"`
	FechaDesde     time.Time `json:"fecha_desde"`
	FechaHasta     time.Time `json:"fecha_hasta"`
	Estado         string    `json:"estado"`
	IDSolicitudSAT string    `json:"id_solicitud_sat,omitempty"`
	Paquetes       []string  `json:"paquetes,omitempty"`
	Mensaje        string    `json:"mensaje,omitempty"`
}
