package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

var _ repository.ClienteRepository = (*ClienteRepo)(nil)

// ClienteRepo implementación del puerto ClienteRepository sobre PostgreSQL (usable con pool o tx).
type ClienteRepo struct {
	q Querier
}

// NewClienteRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClienteRepository(q Querier) *ClienteRepo {
	return &ClienteRepo{q: q}
}

// Create persiste un cliente. El RFC es único; un duplicado retorna domain.ErrDuplicate.
func (r *ClienteRepo) Create(c *entity.Cliente) error {
	query := `
		INSERT INTO clientes (id, rfc, nombre, email, regimenes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.RFC, c.Nombre, nullIfEmpty(c.Email), c.Regimenes, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cliente: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClienteRepo) GetByID(id string) (*entity.Cliente, error) {
	return r.getBy("id = $1", id)
}

// GetByRFC obtiene un cliente por RFC.
func (r *ClienteRepo) GetByRFC(rfc string) (*entity.Cliente, error) {
	return r.getBy("rfc = $1", entity.NormalizaRFC(rfc))
}

func (r *ClienteRepo) getBy(cond string, arg any) (*entity.Cliente, error) {
	query := `
		SELECT id, rfc, nombre, email, regimenes, status,
		       ultima_sync_emitidos, ultima_sync_recibidos, created_at, updated_at
		FROM clientes WHERE ` + cond
	var c entity.Cliente
	var email *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&c.ID, &c.RFC, &c.Nombre, &email, &c.Regimenes, &c.Status,
		&c.UltimaSyncEmitidos, &c.UltimaSyncRecibidos, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	c.Email = deref(email)
	return &c, nil
}

// List lista clientes con paginación.
func (r *ClienteRepo) List(limit, offset int) ([]*entity.Cliente, error) {
	query := `
		SELECT id, rfc, nombre, email, regimenes, status,
		       ultima_sync_emitidos, ultima_sync_recibidos, created_at, updated_at
		FROM clientes ORDER BY nombre ASC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list clientes: %w", err)
	}
	defer rows.Close()

	var out []*entity.Cliente
	for rows.Next() {
		var c entity.Cliente
		var email *string
		if err := rows.Scan(
			&c.ID, &c.RFC, &c.Nombre, &email, &c.Regimenes, &c.Status,
			&c.UltimaSyncEmitidos, &c.UltimaSyncRecibidos, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan cliente: %w", err)
		}
		c.Email = deref(email)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Update actualiza los datos generales (no toca los cursores de sync).
func (r *ClienteRepo) Update(c *entity.Cliente) error {
	query := `
		UPDATE clientes SET rfc = $2, nombre = $3, email = $4, regimenes = $5, status = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		c.ID, c.RFC, c.Nombre, nullIfEmpty(c.Email), c.Regimenes, c.Status, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update cliente: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AvanzarCursorSync mueve el cursor de la dirección dada; GREATEST evita que
// un reproceso viejo lo regrese.
func (r *ClienteRepo) AvanzarCursorSync(clienteID, direccion string, hasta time.Time) error {
	col := "ultima_sync_recibidos"
	if direccion == entity.DireccionEmitidos {
		col = "ultima_sync_emitidos"
	}
	query := fmt.Sprintf(
		`UPDATE clientes SET %s = GREATEST(COALESCE(%s, 'epoch'::timestamptz), $2), updated_at = now() WHERE id = $1`,
		col, col,
	)
	cmd, err := r.q.Exec(context.Background(), query, clienteID, hasta)
	if err != nil {
		return fmt.Errorf("avanzar cursor sync: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
