// Package sat: verificación de estado y sincronización de CFDI contra los
// servicios web del SAT.
package sat

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	domaincfdi "github.com/kontia/kontia-api/internal/domain/cfdi"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
	"github.com/kontia/kontia-api/pkg/logger"
)

// SyncUseCase orquesta la descarga masiva: solicita rangos al SAT, sondea el
// avance, descarga paquetes ZIP y persiste los CFDI nuevos.
type SyncUseCase struct {
	solicitudRepo repository.SolicitudSATRepository
	clienteRepo   repository.ClienteRepository
	cfdiRepo      repository.CFDIRepository
	descargador   Descargador
	parser        *domaincfdi.Parser
	log           *logger.Logger
}

// NewSyncUseCase construye el caso de uso.
func NewSyncUseCase(
	solicitudRepo repository.SolicitudSATRepository,
	clienteRepo repository.ClienteRepository,
	cfdiRepo repository.CFDIRepository,
	descargador Descargador,
	log *logger.Logger,
) *SyncUseCase {
	return &SyncUseCase{
		solicitudRepo: solicitudRepo,
		clienteRepo:   clienteRepo,
		cfdiRepo:      cfdiRepo,
		descargador:   descargador,
		parser:        domaincfdi.NewParser(),
		log:           log,
	}
}

// Solicitar registra y envía una nueva solicitud de descarga para el cliente.
// Si el request no trae rango, se calcula desde el cursor de sincronización
// del cliente hasta ayer. El reclamo contra solicitudes en curso es atómico en
// el repositorio; una segunda llamada concurrente recibe ErrSolicitudEnCurso.
func (uc *SyncUseCase) Solicitar(ctx context.Context, clienteID string, in dto.SolicitarSyncRequest) (*dto.SolicitudSATResponse, error) {
	if in.Direccion != entity.DireccionEmitidos && in.Direccion != entity.DireccionRecibidos {
		return nil, fmt.Errorf("%w: dirección %q", domain.ErrInvalidInput, in.Direccion)
	}
	if uc.descargador == nil {
		return nil, fmt.Errorf("%w: sincronización SAT deshabilitada", domain.ErrInvalidInput)
	}
	cliente, err := uc.clienteRepo.GetByID(clienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, domain.ErrNotFound
	}

	desde, hasta := in.FechaDesde, in.FechaHasta
	if desde.IsZero() {
		desde = inicioDeRango(cliente, in.Direccion)
	}
	if hasta.IsZero() {
		// El SAT indexa por día completo; solo se piden días ya cerrados.
		hasta = time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	}
	if !hasta.After(desde) {
		return nil, fmt.Errorf("%w: rango vacío (%s - %s)", domain.ErrInvalidInput,
			desde.Format("2006-01-02"), hasta.Format("2006-01-02"))
	}

	sol := &entity.SolicitudSAT{
		ID:         uuid.New().String(),
		ClienteID:  clienteID,
		Direccion:  in.Direccion,
		FechaDesde: desde,
		FechaHasta: hasta,
		Estado:     entity.SolicitudPendiente,
	}
	if err := uc.solicitudRepo.Claim(sol); err != nil {
		return nil, err
	}

	idSAT, err := uc.descargador.Solicitar(ctx, cliente.RFC, in.Direccion, desde, hasta)
	if err != nil {
		sol.Estado = entity.SolicitudError
		sol.Mensaje = err.Error()
		if uerr := uc.solicitudRepo.Update(sol); uerr != nil {
			uc.log.Error().Err(uerr).Str("solicitud_id", sol.ID).Msg("no se pudo marcar solicitud como error")
		}
		return nil, fmt.Errorf("solicitar descarga al SAT: %w", err)
	}
	sol.IDSolicitudSAT = idSAT
	sol.Estado = entity.SolicitudEnProceso
	if err := uc.solicitudRepo.Update(sol); err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("cliente_id", clienteID).
		Str("direccion", in.Direccion).
		Str("id_solicitud_sat", idSAT).
		Msg("solicitud de descarga registrada")
	return solicitudResponse(sol), nil
}

// Procesar sondea una solicitud en proceso: consulta avance, descarga los
// paquetes terminados, importa los XML nuevos y avanza el cursor del cliente.
// Es seguro llamarla repetidamente; una solicitud ya terminada no hace nada.
func (uc *SyncUseCase) Procesar(ctx context.Context, solicitudID string) (*dto.SolicitudSATResponse, error) {
	sol, err := uc.solicitudRepo.GetByID(solicitudID)
	if err != nil {
		return nil, err
	}
	if sol == nil {
		return nil, domain.ErrNotFound
	}
	if sol.Estado == entity.SolicitudTerminada || sol.Estado == entity.SolicitudError {
		return solicitudResponse(sol), nil
	}
	if uc.descargador == nil {
		return nil, fmt.Errorf("%w: sincronización SAT deshabilitada", domain.ErrInvalidInput)
	}

	estado, err := uc.descargador.Estado(ctx, sol.IDSolicitudSAT)
	if err != nil {
		return nil, fmt.Errorf("verificar solicitud %s: %w", sol.IDSolicitudSAT, err)
	}
	if estado.Rechazada {
		sol.Estado = entity.SolicitudError
		sol.Mensaje = estado.Mensaje
		if err := uc.solicitudRepo.Update(sol); err != nil {
			return nil, err
		}
		return solicitudResponse(sol), nil
	}
	if !estado.Terminada {
		// Sigue en proceso en el SAT; nada que descargar todavía.
		return solicitudResponse(sol), nil
	}

	cliente, err := uc.clienteRepo.GetByID(sol.ClienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, domain.ErrNotFound
	}

	importados := 0
	for _, idPaquete := range estado.Paquetes {
		data, err := uc.descargador.Paquete(ctx, idPaquete)
		if err != nil {
			return nil, fmt.Errorf("descargar paquete %s: %w", idPaquete, err)
		}
		n, err := uc.importarPaquete(sol.ClienteID, cliente.RFC, data)
		if err != nil {
			return nil, fmt.Errorf("procesar paquete %s: %w", idPaquete, err)
		}
		importados += n
	}

	sol.Paquetes = estado.Paquetes
	sol.Estado = entity.SolicitudTerminada
	if err := uc.solicitudRepo.Update(sol); err != nil {
		return nil, err
	}
	if err := uc.clienteRepo.AvanzarCursorSync(sol.ClienteID, sol.Direccion, sol.FechaHasta); err != nil {
		return nil, err
	}

	uc.log.ConCliente(sol.ClienteID).Info().
		Str("solicitud_id", sol.ID).
		Int("paquetes", len(estado.Paquetes)).
		Int("importados", importados).
		Msg("solicitud de descarga procesada")
	return solicitudResponse(sol), nil
}

// ProcesarPendientes recorre las solicitudes no terminadas; pensado para un
// ticker de fondo. Los errores por solicitud se registran y no detienen el
// barrido.
func (uc *SyncUseCase) ProcesarPendientes(ctx context.Context, limit int) {
	pendientes, err := uc.solicitudRepo.ListPendientes(limit)
	if err != nil {
		uc.log.Error().Err(err).Msg("listar solicitudes pendientes")
		return
	}
	for _, sol := range pendientes {
		if ctx.Err() != nil {
			return
		}
		if _, err := uc.Procesar(ctx, sol.ID); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			uc.log.Warn().Err(err).Str("solicitud_id", sol.ID).Msg("solicitud no pudo procesarse")
		}
	}
}

// Solicitudes lista el historial de solicitudes del cliente.
func (uc *SyncUseCase) Solicitudes(clienteID string, page dto.PageRequest) ([]dto.SolicitudSATResponse, error) {
	page.DefaultPage()
	sols, err := uc.solicitudRepo.ListByCliente(clienteID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SolicitudSATResponse, 0, len(sols))
	for _, s := range sols {
		out = append(out, *solicitudResponse(s))
	}
	return out, nil
}

// importarPaquete descomprime un ZIP del SAT y persiste los CFDI que aún no
// existen para el cliente. Devuelve cuántos se importaron.
func (uc *SyncUseCase) importarPaquete(clienteID, clienteRFC string, data []byte) (int, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("abrir zip: %w", err)
	}

	files := make(map[string][]byte)
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("abrir %s: %w", f.Name, err)
		}
		contenido, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return 0, fmt.Errorf("leer %s: %w", f.Name, err)
		}
		files[f.Name] = contenido
	}

	parseados, fallas := uc.parser.ParseBatch(files, clienteID, clienteRFC)
	for _, f := range fallas {
		uc.log.Warn().Str("archivo", f.Archivo).Err(f.Err).Msg("xml del paquete descartado")
	}

	importados := 0
	for _, c := range parseados {
		existente, err := uc.cfdiRepo.GetByUUID(clienteID, c.UUID)
		if err != nil {
			return importados, err
		}
		if existente != nil {
			continue
		}
		c.ID = uuid.New().String()
		c.CreatedAt = time.Now()
		c.UpdatedAt = c.CreatedAt
		if err := uc.cfdiRepo.Create(c); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				continue
			}
			return importados, err
		}
		importados++
	}
	return importados, nil
}

// inicioDeRango devuelve el día siguiente al cursor de la dirección, o el
// arranque del ejercicio en curso si nunca se ha sincronizado.
func inicioDeRango(cliente *entity.Cliente, direccion string) time.Time {
	var cursor *time.Time
	if direccion == entity.DireccionEmitidos {
		cursor = cliente.UltimaSyncEmitidos
	} else {
		cursor = cliente.UltimaSyncRecibidos
	}
	if cursor != nil {
		return cursor.AddDate(0, 0, 1)
	}
	now := time.Now()
	return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
}

func solicitudResponse(s *entity.SolicitudSAT) *dto.SolicitudSATResponse {
	return &dto.SolicitudSATResponse{
		ID:             s.ID,
		Direccion:      s.Direccion,
		FechaDesde:     s.FechaDesde,
		FechaHasta:     s.FechaHasta,
		Estado:         s.Estado,
		IDSolicitudSAT: s.IDSolicitudSAT,
		Paquetes:       s.Paquetes,
		Mensaje:        s.Mensaje,
	}
}
