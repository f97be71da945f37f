package repository

import "github.com/kontia/kontia-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	Update(user *entity.User) error
}

// CategoriaRepository define el puerto de persistencia para categorías de gasto.
type CategoriaRepository interface {
	Create(categoria *entity.Categoria) error
	ListActivas() ([]*entity.Categoria, error)
}

// DeclaracionRepository define el puerto de persistencia de declaraciones.
type DeclaracionRepository interface {
	Create(d *entity.Declaracion) error
	GetByID(id string) (*entity.Declaracion, error)
	GetByPeriodo(clienteID string, ejercicio, mes int, tipo string) (*entity.Declaracion, error)
	// ListByEjercicio incluye borradores y presentadas, en orden de mes.
	ListByEjercicio(clienteID string, ejercicio int) ([]*entity.Declaracion, error)
	Update(d *entity.Declaracion) error
}
