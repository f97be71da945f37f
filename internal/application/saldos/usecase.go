// Package saldos: casos de uso de saldos a favor. El consumo de un saldo se
// serializa en el repositorio con una escritura condicionada; este paquete
// nunca hace read-modify-write sobre monto_aplicado.
package saldos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
	domainsaldos "github.com/kontia/kontia-api/internal/domain/saldos"
)

// UseCase gestión de saldos a favor.
type UseCase struct {
	repo repository.SaldoFavorRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(repo repository.SaldoFavorRepository) *UseCase {
	return &UseCase{repo: repo}
}

// Crear registra un saldo a favor con monto aplicado en cero.
func (uc *UseCase) Crear(clienteID string, in dto.CrearSaldoRequest) (*dto.SaldoResponse, error) {
	if in.Tipo != entity.SaldoTipoIVA && in.Tipo != entity.SaldoTipoISR {
		return nil, domain.ErrInvalidInput
	}
	if in.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	s := &entity.SaldoFavor{
		ID:                  uuid.New().String(),
		ClienteID:           clienteID,
		Tipo:                in.Tipo,
		MontoOriginal:       in.Monto,
		MontoAplicado:       decimal.Zero,
		Activo:              true,
		MesOrigen:           in.MesOrigen,
		EjercicioOrigen:     in.EjercicioOrigen,
		MesAplicacion:       in.MesAplicacion,
		EjercicioAplicacion: in.EjercicioAplicacion,
		Concepto:            in.Concepto,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := uc.repo.Create(s); err != nil {
		return nil, err
	}
	return saldoResponse(s), nil
}

// List saldos vigentes del cliente (tipo vacío = ambos).
func (uc *UseCase) List(clienteID, tipo string) ([]*dto.SaldoResponse, error) {
	lista, err := uc.repo.ListActivos(clienteID, tipo)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.SaldoResponse, 0, len(lista))
	for _, s := range lista {
		out = append(out, saldoResponse(s))
	}
	return out, nil
}

// Disponible crédito acreditable del tipo en el periodo objetivo.
func (uc *UseCase) Disponible(clienteID, tipo string, ejercicio, mes int) (*dto.DisponibleResponse, error) {
	if tipo != entity.SaldoTipoIVA && tipo != entity.SaldoTipoISR {
		return nil, domain.ErrInvalidInput
	}
	if mes < 1 || mes > 12 {
		return nil, domain.ErrInvalidInput
	}
	lista, err := uc.repo.ListActivos(clienteID, tipo)
	if err != nil {
		return nil, err
	}
	return &dto.DisponibleResponse{
		Tipo:       tipo,
		Ejercicio:  ejercicio,
		Mes:        mes,
		Disponible: domainsaldos.Disponible(lista, tipo, ejercicio, mes),
	}, nil
}

// Aplicar consume monto de un saldo concreto. El repositorio ejecuta el
// incremento condicionado; si el remanente no alcanza (o hubo un consumo
// concurrente) retorna domain.ErrSaldoInsuficiente sin modificar nada.
func (uc *UseCase) Aplicar(clienteID, saldoID string, in dto.AplicarSaldoRequest) (*dto.SaldoResponse, error) {
	if in.Monto.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.repo.GetByID(saldoID)
	if err != nil {
		return nil, err
	}
	if s == nil || s.ClienteID != clienteID {
		return nil, domain.ErrNotFound
	}
	actualizado, err := uc.repo.Aplicar(saldoID, in.Monto)
	if err != nil {
		return nil, err
	}
	return saldoResponse(actualizado), nil
}

// Eliminar hace baja lógica del saldo; el registro se conserva para auditoría.
func (uc *UseCase) Eliminar(clienteID, saldoID string) error {
	s, err := uc.repo.GetByID(saldoID)
	if err != nil {
		return err
	}
	if s == nil || s.ClienteID != clienteID {
		return domain.ErrNotFound
	}
	return uc.repo.Eliminar(saldoID)
}

func saldoResponse(s *entity.SaldoFavor) *dto.SaldoResponse {
	return &dto.SaldoResponse{
		ID:                  s.ID,
		Tipo:                s.Tipo,
		MontoOriginal:       s.MontoOriginal,
		MontoAplicado:       s.MontoAplicado,
		Remanente:           s.Remanente(),
		Activo:              s.Activo,
		MesOrigen:           s.MesOrigen,
		EjercicioOrigen:     s.EjercicioOrigen,
		MesAplicacion:       s.MesAplicacion,
		EjercicioAplicacion: s.EjercicioAplicacion,
		Concepto:            s.Concepto,
	}
}
