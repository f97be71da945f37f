// Package fiscal: casos de uso de resúmenes y declaraciones. Los resúmenes se
// recalculan siempre desde los CFDI; nunca se persiste un agregado que pueda
// desfasarse.
package fiscal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	domainfiscal "github.com/kontia/kontia-api/internal/domain/fiscal"
	"github.com/kontia/kontia-api/internal/domain/repository"
	"github.com/kontia/kontia-api/internal/domain/saldos"
)

var tasaISRDefault = decimal.NewFromInt(30)

// UseCase cálculo de resúmenes fiscales y declaraciones provisionales.
type UseCase struct {
	cfdiRepo        repository.CFDIRepository
	saldoRepo       repository.SaldoFavorRepository
	declaracionRepo repository.DeclaracionRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(cfdiRepo repository.CFDIRepository, saldoRepo repository.SaldoFavorRepository, declaracionRepo repository.DeclaracionRepository) *UseCase {
	return &UseCase{cfdiRepo: cfdiRepo, saldoRepo: saldoRepo, declaracionRepo: declaracionRepo}
}

// ResumenAnual agrega el ejercicio completo del cliente.
func (uc *UseCase) ResumenAnual(clienteID string, ejercicio int) (*domainfiscal.ResumenAnual, error) {
	cfdis, err := uc.cfdiRepo.ListByClienteEjercicio(clienteID, ejercicio)
	if err != nil {
		return nil, err
	}
	return domainfiscal.CalcularResumenAnual(cfdis, ejercicio), nil
}

// ResumenMensual devuelve solo el mes pedido del resumen anual.
func (uc *UseCase) ResumenMensual(clienteID string, ejercicio, mes int) (*domainfiscal.ResumenMensual, error) {
	if mes < 1 || mes > 12 {
		return nil, domain.ErrInvalidInput
	}
	r, err := uc.ResumenAnual(clienteID, ejercicio)
	if err != nil {
		return nil, err
	}
	m := r.Meses[mes-1]
	return &m, nil
}

// Acumulado devuelve las cifras acumuladas de enero al mes (pagos provisionales).
func (uc *UseCase) Acumulado(clienteID string, ejercicio, mes int) (*domainfiscal.Acumulado, error) {
	if mes < 1 || mes > 12 {
		return nil, domain.ErrInvalidInput
	}
	r, err := uc.ResumenAnual(clienteID, ejercicio)
	if err != nil {
		return nil, err
	}
	a := domainfiscal.AcumuladoHasta(r, mes)
	return &a, nil
}

// CalcularDeclaracion genera (o regenera) el borrador del pago provisional del
// periodo: ISR sobre la utilidad acumulada menos retenciones y pagos previos,
// IVA del mes, y opcionalmente acredita saldos a favor disponibles. La
// aplicación de cada saldo la serializa el repositorio con una escritura
// condicionada; aquí no hay read-modify-write.
func (uc *UseCase) CalcularDeclaracion(clienteID string, in dto.CalcularDeclaracionRequest) (*dto.DeclaracionResponse, error) {
	if in.Mes < 1 || in.Mes > 12 || in.Ejercicio == 0 {
		return nil, domain.ErrInvalidInput
	}
	resumen, err := uc.ResumenAnual(clienteID, in.Ejercicio)
	if err != nil {
		return nil, err
	}
	acumulado := domainfiscal.AcumuladoHasta(resumen, in.Mes)
	mes := resumen.Meses[in.Mes-1]

	tasa := in.TasaISR
	if tasa.IsZero() {
		tasa = tasaISRDefault
	}

	utilidad := acumulado.Ingresos.Sub(acumulado.Deducciones)
	if utilidad.IsNegative() {
		utilidad = decimal.Zero
	}
	isrCausado := utilidad.Mul(tasa).Div(decimal.NewFromInt(100)).Round(2)

	pagosPrevios, err := uc.pagosProvisionalesPrevios(clienteID, in.Ejercicio, in.Mes)
	if err != nil {
		return nil, err
	}
	isrCargo := isrCausado.Sub(acumulado.ISRRetenido).Sub(pagosPrevios)
	if isrCargo.IsNegative() {
		isrCargo = decimal.Zero
	}
	ivaCargo := mes.IVAAPagar
	if ivaCargo.IsNegative() {
		ivaCargo = decimal.Zero
	}

	d := &entity.Declaracion{
		ClienteID:                 clienteID,
		Tipo:                      entity.DeclaracionProvisional,
		Ejercicio:                 in.Ejercicio,
		Mes:                       in.Mes,
		IngresosAcumulados:        acumulado.Ingresos,
		DeduccionesAcumuladas:     acumulado.Deducciones,
		ISRRetenidoAcumulado:      acumulado.ISRRetenido,
		ISRCausado:                isrCausado,
		PagosProvisionalesPrevios: pagosPrevios,
		ISRCargo:                  isrCargo,
		IVACargo:                  ivaCargo,
		Estado:                    entity.DeclaracionBorrador,
	}

	if in.AplicarSaldos {
		if err := uc.aplicarSaldos(d); err != nil {
			return nil, err
		}
	}

	if err := uc.guardar(d); err != nil {
		return nil, err
	}
	return declaracionResponse(d), nil
}

// Presentar marca la declaración como presentada.
func (uc *UseCase) Presentar(clienteID, declaracionID string) (*dto.DeclaracionResponse, error) {
	d, err := uc.declaracionRepo.GetByID(declaracionID)
	if err != nil {
		return nil, err
	}
	if d == nil || d.ClienteID != clienteID {
		return nil, domain.ErrNotFound
	}
	if d.Estado == entity.DeclaracionPresentada {
		return nil, domain.ErrConflict
	}
	now := time.Now()
	d.Estado = entity.DeclaracionPresentada
	d.FechaPresentacion = &now
	d.UpdatedAt = now
	if err := uc.declaracionRepo.Update(d); err != nil {
		return nil, err
	}
	return declaracionResponse(d), nil
}

// ListDeclaraciones declaraciones del ejercicio.
func (uc *UseCase) ListDeclaraciones(clienteID string, ejercicio int) ([]*dto.DeclaracionResponse, error) {
	lista, err := uc.declaracionRepo.ListByEjercicio(clienteID, ejercicio)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.DeclaracionResponse, 0, len(lista))
	for _, d := range lista {
		out = append(out, declaracionResponse(d))
	}
	return out, nil
}

// pagosProvisionalesPrevios suma el ISR a cargo de declaraciones presentadas
// de meses anteriores del mismo ejercicio.
func (uc *UseCase) pagosProvisionalesPrevios(clienteID string, ejercicio, mes int) (decimal.Decimal, error) {
	previas, err := uc.declaracionRepo.ListByEjercicio(clienteID, ejercicio)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, p := range previas {
		if p.Tipo == entity.DeclaracionProvisional && p.Mes < mes && p.Estado == entity.DeclaracionPresentada {
			total = total.Add(p.ISRCargo)
		}
	}
	return total, nil
}

// aplicarSaldos acredita saldos a favor disponibles contra los cargos de la
// declaración, por antigüedad, delegando cada consumo a la escritura atómica
// del repositorio.
func (uc *UseCase) aplicarSaldos(d *entity.Declaracion) error {
	for _, tipo := range []string{entity.SaldoTipoISR, entity.SaldoTipoIVA} {
		cargo := d.ISRCargo
		if tipo == entity.SaldoTipoIVA {
			cargo = d.IVACargo
		}
		if cargo.LessThanOrEqual(decimal.Zero) {
			continue
		}
		vigentes, err := uc.saldoRepo.ListActivos(d.ClienteID, tipo)
		if err != nil {
			return err
		}
		consumos, _ := saldos.Aplicar(vigentes, tipo, d.Ejercicio, d.Mes, cargo)
		aplicado := decimal.Zero
		for id, monto := range consumos {
			if _, err := uc.saldoRepo.Aplicar(id, monto); err != nil {
				if err == domain.ErrSaldoInsuficiente {
					continue // otro consumo ganó la carrera; se omite este saldo
				}
				return err
			}
			aplicado = aplicado.Add(monto)
		}
		if tipo == entity.SaldoTipoISR {
			d.SaldoAplicadoISR = aplicado
			d.ISRCargo = d.ISRCargo.Sub(aplicado)
		} else {
			d.SaldoAplicadoIVA = aplicado
			d.IVACargo = d.IVACargo.Sub(aplicado)
		}
	}
	return nil
}

func (uc *UseCase) guardar(d *entity.Declaracion) error {
	now := time.Now()
	existente, err := uc.declaracionRepo.GetByPeriodo(d.ClienteID, d.Ejercicio, d.Mes, d.Tipo)
	if err != nil {
		return err
	}
	if existente != nil {
		if existente.Estado == entity.DeclaracionPresentada {
			return domain.ErrConflict // una declaración presentada no se regenera
		}
		d.ID = existente.ID
		d.CreatedAt = existente.CreatedAt
		d.UpdatedAt = now
		return uc.declaracionRepo.Update(d)
	}
	d.ID = uuid.New().String()
	d.CreatedAt = now
	d.UpdatedAt = now
	return uc.declaracionRepo.Create(d)
}

func declaracionResponse(d *entity.Declaracion) *dto.DeclaracionResponse {
	return &dto.DeclaracionResponse{
		ID:                        d.ID,
		Tipo:                      d.Tipo,
		Ejercicio:                 d.Ejercicio,
		Mes:                       d.Mes,
		IngresosAcumulados:        d.IngresosAcumulados,
		DeduccionesAcumuladas:     d.DeduccionesAcumuladas,
		ISRRetenidoAcumulado:      d.ISRRetenidoAcumulado,
		ISRCausado:                d.ISRCausado,
		PagosProvisionalesPrevios: d.PagosProvisionalesPrevios,
		ISRCargo:                  d.ISRCargo,
		IVACargo:                  d.IVACargo,
		SaldoAplicadoISR:          d.SaldoAplicadoISR,
		SaldoAplicadoIVA:          d.SaldoAplicadoIVA,
		Estado:                    d.Estado,
		FechaPresentacion:         d.FechaPresentacion,
	}
}
