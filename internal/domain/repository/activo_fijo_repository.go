package repository

import "github.com/kontia/kontia-api/internal/domain/entity"

// ActivoFijoRepository define el puerto de persistencia para activos fijos.
type ActivoFijoRepository interface {
	Create(activo *entity.ActivoFijo) error
	GetByID(id string) (*entity.ActivoFijo, error)
	ListByCliente(clienteID string, limit, offset int) ([]*entity.ActivoFijo, error)
	Update(activo *entity.ActivoFijo) error
}

// DepreciacionRepository define el puerto del libro mensual de depreciación.
// El libro es append-only: no hay update ni delete de renglones.
type DepreciacionRepository interface {
	Create(reg *entity.DepreciacionMensual) error
	ListByActivo(activoID string) ([]*entity.DepreciacionMensual, error)
	// UltimoRegistro devuelve el renglón más reciente del activo, o nil.
	UltimoRegistro(activoID string) (*entity.DepreciacionMensual, error)
}
