package repository

import "github.com/kontia/kontia-api/internal/domain/entity"

// SolicitudSATRepository define el puerto de persistencia de solicitudes de
// descarga masiva.
type SolicitudSATRepository interface {
	// Claim intenta registrar una nueva solicitud para (cliente, dirección).
	// La inserción es atómica contra un índice único parcial sobre solicitudes
	// no terminadas: si ya existe una en curso retorna
	// domain.ErrSolicitudEnCurso sin crear nada. Este es el candado de
	// idempotencia del polling; no hay ventana entre verificación y escritura.
	Claim(solicitud *entity.SolicitudSAT) error
	GetByID(id string) (*entity.SolicitudSAT, error)
	ListPendientes(limit int) ([]*entity.SolicitudSAT, error)
	ListByCliente(clienteID string, limit, offset int) ([]*entity.SolicitudSAT, error)
	Update(solicitud *entity.SolicitudSAT) error
}
