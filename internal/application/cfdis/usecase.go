// Package cfdis: casos de uso de carga y clasificación de comprobantes.
package cfdis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	domaincfdi "github.com/kontia/kontia-api/internal/domain/cfdi"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

// TxRunner ejecuta un callback dentro de una transacción, con un repositorio
// de CFDI atado a la tx. Un lote de carga se importa completo o no se importa.
type TxRunner interface {
	Run(ctx context.Context, fn func(cfdiRepo repository.CFDIRepository) error) error
}

// UseCase carga, listado y clasificación fiscal de CFDI.
type UseCase struct {
	cfdiRepo    repository.CFDIRepository
	clienteRepo repository.ClienteRepository
	txRunner    TxRunner
	parser      *domaincfdi.Parser
}

// NewUseCase construye el caso de uso. txRunner puede ser nil; en ese caso la
// carga escribe comprobante por comprobante sin atomicidad de lote.
func NewUseCase(cfdiRepo repository.CFDIRepository, clienteRepo repository.ClienteRepository, txRunner TxRunner) *UseCase {
	return &UseCase{cfdiRepo: cfdiRepo, clienteRepo: clienteRepo, txRunner: txRunner, parser: domaincfdi.NewParser()}
}

// Cargar parsea e importa un lote de XML para el cliente. Los duplicados
// (mismo UUID ya importado o repetido dentro del lote) se omiten sin error;
// los archivos inválidos se reportan por nombre sin detener el lote.
func (uc *UseCase) Cargar(clienteID string, in dto.CargarCFDIRequest) (*dto.CargarCFDIResponse, error) {
	cliente, err := uc.clienteRepo.GetByID(clienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, domain.ErrNotFound
	}

	files := make(map[string][]byte, len(in.Archivos))
	for nombre, contenido := range in.Archivos {
		files[nombre] = []byte(contenido)
	}
	parseados, fallas := uc.parser.ParseBatch(files, clienteID, cliente.RFC)

	out := &dto.CargarCFDIResponse{}
	for _, f := range fallas {
		out.Errores = append(out.Errores, dto.ErrorArchivoDTO{Archivo: f.Archivo, Error: f.Err.Error()})
	}

	importar := func(repo repository.CFDIRepository) error {
		now := time.Now()
		for _, c := range parseados {
			existente, err := repo.GetByUUID(clienteID, c.UUID)
			if err != nil {
				return err
			}
			if existente != nil {
				out.Duplicados++
				continue
			}
			c.ID = uuid.New().String()
			c.CreatedAt = now
			c.UpdatedAt = now
			if err := repo.Create(c); err != nil {
				return err
			}
			out.Importados++
			out.CFDIs = append(out.CFDIs, dto.NewCFDIResponse(c))
		}
		return nil
	}

	if uc.txRunner != nil {
		err = uc.txRunner.Run(context.Background(), importar)
	} else {
		err = importar(uc.cfdiRepo)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// List devuelve los CFDI del cliente (ejercicio 0 = todos).
func (uc *UseCase) List(clienteID string, ejercicio, limit, offset int) ([]*dto.CFDIResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	lista, err := uc.cfdiRepo.ListByCliente(clienteID, ejercicio, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.CFDIResponse, 0, len(lista))
	for _, c := range lista {
		out = append(out, dto.NewCFDIResponse(c))
	}
	return out, nil
}

// Clasificar aplica ediciones de clasificación fiscal del contador. Un CFDI
// bloqueado no admite más ediciones. Si se capturan gravados a mano se fija
// GravadoModificado y no vuelven a derivarse; si solo cambia la deducibilidad
// y el comprobante no está modificado a mano, los gravados se re-derivan del
// IVA trasladado para mantener el invariante.
func (uc *UseCase) Clasificar(clienteID, cfdiID string, in dto.ClasificarCFDIRequest) (*dto.CFDIResponse, error) {
	c, err := uc.cfdiRepo.GetByID(cfdiID)
	if err != nil {
		return nil, err
	}
	if c == nil || c.ClienteID != clienteID {
		return nil, domain.ErrNotFound
	}
	if c.Bloqueado {
		return nil, domain.ErrCFDIBloqueado
	}

	if in.EsDeducible != nil {
		c.EsDeducible = *in.EsDeducible
	}
	if in.MesDeduccion != nil {
		mes := *in.MesDeduccion
		if mes < 0 || (mes > 12 && mes != entity.MesDeduccionAnual) {
			return nil, domain.ErrInvalidInput
		}
		c.MesDeduccion = mes
	}
	if in.GravadoISR != nil || in.GravadoIVA != nil {
		if in.GravadoISR != nil {
			c.GravadoISR = *in.GravadoISR
		}
		if in.GravadoIVA != nil {
			c.GravadoIVA = *in.GravadoIVA
		}
		c.GravadoModificado = true
	} else if !c.GravadoModificado {
		c.GravadoISR, c.GravadoIVA = domaincfdi.DerivarGravado(c.ImpuestoTrasladado)
	}
	if in.Categoria != nil {
		c.Categoria = *in.Categoria
	}
	if in.Bloquear != nil {
		c.Bloqueado = *in.Bloquear
	}
	c.UpdatedAt = time.Now()

	if err := uc.cfdiRepo.UpdateClasificacion(c); err != nil {
		return nil, err
	}
	return dto.NewCFDIResponse(c), nil
}

// MarcarCancelado fija la bandera de cancelación tras una verificación SAT.
// La cancelación es un estado, no un borrado.
func (uc *UseCase) MarcarCancelado(clienteID, cfdiID string, cancelado bool) error {
	c, err := uc.cfdiRepo.GetByID(cfdiID)
	if err != nil {
		return err
	}
	if c == nil || c.ClienteID != clienteID {
		return domain.ErrNotFound
	}
	return uc.cfdiRepo.MarcarCancelado(cfdiID, cancelado)
}

// Eliminar borra físicamente un comprobante; reservado al rol admin.
func (uc *UseCase) Eliminar(cfdiID string) error {
	c, err := uc.cfdiRepo.GetByID(cfdiID)
	if err != nil {
		return err
	}
	if c == nil {
		return domain.ErrNotFound
	}
	return uc.cfdiRepo.Delete(cfdiID)
}
