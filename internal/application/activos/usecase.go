// Package activos: casos de uso de activos fijos y su libro de depreciación.
package activos

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	domainactivos "github.com/kontia/kontia-api/internal/domain/activos"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

// UseCase gestión de activos fijos.
type UseCase struct {
	activoRepo repository.ActivoFijoRepository
	depRepo    repository.DepreciacionRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(activoRepo repository.ActivoFijoRepository, depRepo repository.DepreciacionRepository) *UseCase {
	return &UseCase{activoRepo: activoRepo, depRepo: depRepo}
}

// Crear da de alta un activo fijo.
func (uc *UseCase) Crear(clienteID string, in dto.CrearActivoRequest) (*dto.ActivoResponse, error) {
	if in.Nombre == "" || in.Costo.LessThanOrEqual(decimal.Zero) || in.VidaUtilMeses <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.ValorResidual.IsNegative() || in.ValorResidual.GreaterThanOrEqual(in.Costo) {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	a := &entity.ActivoFijo{
		ID:                 uuid.New().String(),
		ClienteID:          clienteID,
		Nombre:             in.Nombre,
		Descripcion:        in.Descripcion,
		Costo:              in.Costo,
		ValorResidual:      in.ValorResidual,
		VidaUtilMeses:      in.VidaUtilMeses,
		TasaDeduccionAnual: in.TasaDeduccionAnual,
		FechaCompra:        in.FechaCompra,
		Estado:             entity.ActivoEstadoActivo,
		ValorActual:        in.Costo,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := uc.activoRepo.Create(a); err != nil {
		return nil, err
	}
	return uc.response(a), nil
}

// List activos del cliente con su valuación al día.
func (uc *UseCase) List(clienteID string, limit, offset int) ([]*dto.ActivoResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	lista, err := uc.activoRepo.ListByCliente(clienteID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ActivoResponse, 0, len(lista))
	for _, a := range lista {
		out = append(out, uc.response(a))
	}
	return out, nil
}

// Calendario devuelve el calendario de depreciación del activo. Si ya existe
// libro materializado se sirve tal cual (histórico); si no, se calcula.
func (uc *UseCase) Calendario(clienteID, activoID string) ([]dto.PeriodoDepreciacionDTO, error) {
	a, err := uc.buscar(clienteID, activoID)
	if err != nil {
		return nil, err
	}
	libro, err := uc.depRepo.ListByActivo(activoID)
	if err != nil {
		return nil, err
	}
	if len(libro) > 0 {
		out := make([]dto.PeriodoDepreciacionDTO, 0, len(libro))
		for _, r := range libro {
			out = append(out, periodoDTO(*r))
		}
		return out, nil
	}
	calendario := domainactivos.GenerarCalendario(a, 0)
	out := make([]dto.PeriodoDepreciacionDTO, 0, len(calendario))
	for _, r := range calendario {
		out = append(out, periodoDTO(r))
	}
	return out, nil
}

// RegistrarPeriodo materializa el siguiente renglón del libro de depreciación
// (cierre mensual) y actualiza la valuación almacenada del activo. Si el
// activo llega a su valor residual se marca como depreciado.
func (uc *UseCase) RegistrarPeriodo(clienteID, activoID string) (*dto.PeriodoDepreciacionDTO, error) {
	a, err := uc.buscar(clienteID, activoID)
	if err != nil {
		return nil, err
	}
	if !a.EsVigente() {
		return nil, domain.ErrConflict
	}

	ultimo, err := uc.depRepo.UltimoRegistro(activoID)
	if err != nil {
		return nil, err
	}

	calendario := domainactivos.GenerarCalendario(a, 0)
	if len(calendario) == 0 {
		return nil, domain.ErrConflict
	}
	siguiente := 0
	if ultimo != nil {
		for i, r := range calendario {
			if r.Ejercicio == ultimo.Ejercicio && r.Mes == ultimo.Mes {
				siguiente = i + 1
				break
			}
		}
	}
	if siguiente >= len(calendario) {
		return nil, domain.ErrConflict // el activo ya agotó su calendario
	}

	reg := calendario[siguiente]
	reg.ID = uuid.New().String()
	reg.CreatedAt = time.Now()
	if err := uc.depRepo.Create(&reg); err != nil {
		return nil, err
	}

	a.DepreciacionAcumulada = reg.AcumuladaDespues
	a.ValorActual = reg.ValorDespues
	if a.ValorActual.LessThanOrEqual(a.ValorResidual) {
		a.Estado = entity.ActivoEstadoDepreciado
	}
	a.UpdatedAt = time.Now()
	if err := uc.activoRepo.Update(a); err != nil {
		return nil, err
	}

	out := periodoDTO(reg)
	return &out, nil
}

// Disponer marca el activo como vendido o dado de baja; la valuación
// almacenada queda congelada y deja de recalcularse.
func (uc *UseCase) Disponer(clienteID, activoID, estado string) (*dto.ActivoResponse, error) {
	if estado != entity.ActivoEstadoVendido && estado != entity.ActivoEstadoBaja {
		return nil, domain.ErrInvalidInput
	}
	a, err := uc.buscar(clienteID, activoID)
	if err != nil {
		return nil, err
	}
	acum, valor := domainactivos.AcumuladaAl(a, time.Now())
	a.DepreciacionAcumulada = acum
	a.ValorActual = valor
	a.Estado = estado
	a.UpdatedAt = time.Now()
	if err := uc.activoRepo.Update(a); err != nil {
		return nil, err
	}
	return uc.response(a), nil
}

func (uc *UseCase) buscar(clienteID, activoID string) (*entity.ActivoFijo, error) {
	a, err := uc.activoRepo.GetByID(activoID)
	if err != nil {
		return nil, err
	}
	if a == nil || a.ClienteID != clienteID {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (uc *UseCase) response(a *entity.ActivoFijo) *dto.ActivoResponse {
	acum, valor := domainactivos.AcumuladaAl(a, time.Now())
	return &dto.ActivoResponse{
		ID:                    a.ID,
		Nombre:                a.Nombre,
		Costo:                 a.Costo,
		ValorResidual:         a.ValorResidual,
		VidaUtilMeses:         a.VidaUtilMeses,
		TasaDeduccionAnual:    a.TasaDeduccionAnual,
		FechaCompra:           a.FechaCompra,
		Estado:                a.Estado,
		MontoMensual:          domainactivos.MontoMensual(a),
		DepreciacionAcumulada: acum,
		ValorActual:           valor,
	}
}

func periodoDTO(r entity.DepreciacionMensual) dto.PeriodoDepreciacionDTO {
	return dto.PeriodoDepreciacionDTO{
		Ejercicio:        r.Ejercicio,
		Mes:              r.Mes,
		Monto:            r.Monto,
		AcumuladaAntes:   r.AcumuladaAntes,
		AcumuladaDespues: r.AcumuladaDespues,
		ValorAntes:       r.ValorAntes,
		ValorDespues:     r.ValorDespues,
	}
}
