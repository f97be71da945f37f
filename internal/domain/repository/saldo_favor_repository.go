package repository

import (
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// SaldoFavorRepository define el puerto de persistencia para saldos a favor.
type SaldoFavorRepository interface {
	Create(saldo *entity.SaldoFavor) error
	GetByID(id string) (*entity.SaldoFavor, error)
	// ListActivos devuelve los saldos vigentes del cliente para un tipo
	// (IVA/ISR); tipo vacío = ambos.
	ListActivos(clienteID, tipo string) ([]*entity.SaldoFavor, error)
	// Aplicar incrementa monto_aplicado de forma atómica en la base:
	// UPDATE condicionado a que el consumo no rebase monto_original. Si la
	// condición falla (otro consumo ganó la carrera) retorna
	// domain.ErrSaldoInsuficiente y no modifica nada.
	Aplicar(id string, monto decimal.Decimal) (*entity.SaldoFavor, error)
	// Eliminar es baja lógica: marca eliminado_en y desactiva el saldo.
	Eliminar(id string) error
}
