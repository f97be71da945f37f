package sat

import (
	"context"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

// VerificacionUseCase consulta el estado de un CFDI ante el SAT y refleja la
// cancelación en el comprobante almacenado.
type VerificacionUseCase struct {
	cfdiRepo    repository.CFDIRepository
	verificador Verificador
}

// NewVerificacionUseCase construye el caso de uso.
func NewVerificacionUseCase(cfdiRepo repository.CFDIRepository, verificador Verificador) *VerificacionUseCase {
	return &VerificacionUseCase{cfdiRepo: cfdiRepo, verificador: verificador}
}

// Verificar consulta el WS y devuelve un resultado tipado. Las fallas del
// servicio se reportan como Status "Error" con mensaje; nunca se propagan como
// excepción al handler. Si el SAT reporta Cancelado, la bandera se persiste.
func (uc *VerificacionUseCase) Verificar(ctx context.Context, clienteID, cfdiID string) (*dto.VerificarCFDIResponse, error) {
	c, err := uc.cfdiRepo.GetByID(cfdiID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.ClienteID != clienteID {
		return nil, domain.ErrNotFound
	}
	if uc.verificador == nil {
		return &dto.VerificarCFDIResponse{UUID: c.UUID, Status: EstadoError, Mensaje: "verificación SAT deshabilitada"}, nil
	}

	// El total se formatea a dos decimales fijos, sin separador de miles,
	// según el contrato de ConsultaCFDIService.
	res, err := uc.verificador.Verificar(ctx, c.UUID, c.RFCEmisor, c.RFCReceptor, c.Total.StringFixed(2))
	if err != nil {
		return &dto.VerificarCFDIResponse{UUID: c.UUID, Status: EstadoError, Mensaje: err.Error()}, nil
	}

	if res.Estado == EstadoCancelado && !c.EstaCancelado {
		if err := uc.cfdiRepo.MarcarCancelado(c.ID, true); err != nil {
			return nil, err
		}
	}
	return &dto.VerificarCFDIResponse{
		UUID:               c.UUID,
		Status:             res.Estado,
		EsCancelable:       res.EsCancelable,
		EstatusCancelacion: res.EstatusCancelacion,
		Mensaje:            res.Mensaje,
	}, nil
}
