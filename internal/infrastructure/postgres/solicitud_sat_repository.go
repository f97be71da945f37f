package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

var _ repository.SolicitudSATRepository = (*SolicitudSATRepo)(nil)

// SolicitudSATRepo implementación del puerto SolicitudSATRepository sobre PostgreSQL (usable con pool o tx).
type SolicitudSATRepo struct {
	q Querier
}

// NewSolicitudSATRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSolicitudSATRepository(q Querier) *SolicitudSATRepo {
	return &SolicitudSATRepo{q: q}
}

const solicitudColumns = `
	id, cliente_id, direccion, fecha_desde, fecha_hasta,
	estado, id_solicitud_sat, paquetes, mensaje, created_at, updated_at`

// Claim registra la solicitud con ON CONFLICT DO NOTHING contra el índice
// único parcial sobre solicitudes no terminadas de (cliente, dirección). Cero
// filas insertadas significa que otra solicitud sigue en curso.
func (r *SolicitudSATRepo) Claim(s *entity.SolicitudSAT) error {
	query := `
		INSERT INTO solicitudes_sat (` + solicitudColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		ON CONFLICT (cliente_id, direccion) WHERE estado IN ('pendiente', 'en_proceso')
		DO NOTHING`
	cmd, err := r.q.Exec(context.Background(), query,
		s.ID, s.ClienteID, s.Direccion, s.FechaDesde, s.FechaHasta,
		s.Estado, nullIfEmpty(s.IDSolicitudSAT), s.Paquetes, nullIfEmpty(s.Mensaje),
	)
	if err != nil {
		return fmt.Errorf("claim solicitud: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSolicitudEnCurso
	}
	return nil
}

// GetByID obtiene una solicitud por ID.
func (r *SolicitudSATRepo) GetByID(id string) (*entity.SolicitudSAT, error) {
	query := `SELECT ` + solicitudColumns + ` FROM solicitudes_sat WHERE id = $1`
	s, err := scanSolicitud(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get solicitud: %w", err)
	}
	return s, nil
}

// ListPendientes devuelve las solicitudes pendientes o en proceso, más viejas primero.
func (r *SolicitudSATRepo) ListPendientes(limit int) ([]*entity.SolicitudSAT, error) {
	query := `
		SELECT ` + solicitudColumns + ` FROM solicitudes_sat
		WHERE estado IN ('pendiente', 'en_proceso')
		ORDER BY created_at ASC LIMIT $1`
	return r.list(query, limit)
}

// ListByCliente historial de solicitudes del cliente, más recientes primero.
func (r *SolicitudSATRepo) ListByCliente(clienteID string, limit, offset int) ([]*entity.SolicitudSAT, error) {
	query := `
		SELECT ` + solicitudColumns + ` FROM solicitudes_sat
		WHERE cliente_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	return r.list(query, clienteID, limit, offset)
}

// Update persiste estado, folio SAT, paquetes y mensaje.
func (r *SolicitudSATRepo) Update(s *entity.SolicitudSAT) error {
	query := `
		UPDATE solicitudes_sat SET
			estado = $2, id_solicitud_sat = $3, paquetes = $4, mensaje = $5, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		s.ID, s.Estado, nullIfEmpty(s.IDSolicitudSAT), s.Paquetes, nullIfEmpty(s.Mensaje),
	)
	if err != nil {
		return fmt.Errorf("update solicitud: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SolicitudSATRepo) list(query string, args ...any) ([]*entity.SolicitudSAT, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list solicitudes: %w", err)
	}
	defer rows.Close()

	var out []*entity.SolicitudSAT
	for rows.Next() {
		s, err := scanSolicitud(rows)
		if err != nil {
			return nil, fmt.Errorf("scan solicitud: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSolicitud(row pgx.Row) (*entity.SolicitudSAT, error) {
	var s entity.SolicitudSAT
	var idSAT, mensaje *string
	err := row.Scan(
		&s.ID, &s.ClienteID, &s.Direccion, &s.FechaDesde, &s.FechaHasta,
		&s.Estado, &idSAT, &s.Paquetes, &mensaje, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.IDSolicitudSAT = deref(idSAT)
	s.Mensaje = deref(mensaje)
	return &s, nil
}
