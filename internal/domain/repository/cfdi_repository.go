package repository

import "github.com/kontia/kontia-api/internal/domain/entity"

// CFDIRepository define el puerto de persistencia para comprobantes.
type CFDIRepository interface {
	Create(cfdi *entity.CFDI) error
	GetByID(id string) (*entity.CFDI, error)
	GetByUUID(clienteID, uuid string) (*entity.CFDI, error)
	// ListByCliente devuelve los CFDI del cliente; ejercicio 0 = todos.
	ListByCliente(clienteID string, ejercicio int, limit, offset int) ([]*entity.CFDI, error)
	// ListByClienteEjercicio devuelve el conjunto completo del ejercicio,
	// sin paginar: el cálculo fiscal agrega siempre sobre el conjunto entero.
	ListByClienteEjercicio(clienteID string, ejercicio int) ([]*entity.CFDI, error)
	// UpdateClasificacion persiste solo los campos de clasificación fiscal:
	// es_deducible, mes_deduccion, gravado_isr, gravado_iva,
	// gravado_modificado, categoria, bloqueado.
	UpdateClasificacion(cfdi *entity.CFDI) error
	// MarcarCancelado fija la bandera de cancelación (verificación SAT).
	MarcarCancelado(id string, cancelado bool) error
	// AgregarComplementoPago liga el UUID de un complemento de pago a un CFDI PPD.
	AgregarComplementoPago(id string, uuidComplemento string) error
	// Delete elimina físicamente; solo vía acción explícita de administrador.
	Delete(id string) error
}
