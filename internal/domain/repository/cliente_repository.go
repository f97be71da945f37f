package repository

import (
	"time"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// ClienteRepository define el puerto de persistencia para Cliente.
type ClienteRepository interface {
	Create(cliente *entity.Cliente) error
	GetByID(id string) (*entity.Cliente, error)
	GetByRFC(rfc string) (*entity.Cliente, error)
	List(limit, offset int) ([]*entity.Cliente, error)
	Update(cliente *entity.Cliente) error
	// AvanzarCursorSync actualiza la última fecha completamente sincronizada
	// para la dirección dada (emitidos/recibidos).
	AvanzarCursorSync(clienteID, direccion string, hasta time.Time) error
}
