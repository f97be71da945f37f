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

var _ repository.ActivoFijoRepository = (*ActivoFijoRepo)(nil)
var _ repository.DepreciacionRepository = (*DepreciacionRepo)(nil)

// ActivoFijoRepo implementación del puerto ActivoFijoRepository sobre PostgreSQL (usable con pool o tx).
type ActivoFijoRepo struct {
	q Querier
}

// NewActivoFijoRepository construye el adaptador. Pasar pool o tx (Querier).
func NewActivoFijoRepository(q Querier) *ActivoFijoRepo {
	return &ActivoFijoRepo{q: q}
}

// Create persiste un activo fijo.
func (r *ActivoFijoRepo) Create(a *entity.ActivoFijo) error {
	query := `
		INSERT INTO activos_fijos (
			id, cliente_id, nombre, descripcion, costo, valor_residual, vida_util_meses,
			tasa_deduccion_anual, fecha_compra, estado, depreciacion_acumulada, valor_actual,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.ClienteID, a.Nombre, nullIfEmpty(a.Descripcion), a.Costo, a.ValorResidual, a.VidaUtilMeses,
		a.TasaDeduccionAnual, a.FechaCompra, a.Estado, a.DepreciacionAcumulada, a.ValorActual,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activo: %w", err)
	}
	return nil
}

// GetByID obtiene un activo por ID.
func (r *ActivoFijoRepo) GetByID(id string) (*entity.ActivoFijo, error) {
	query := `
		SELECT id, cliente_id, nombre, descripcion, costo, valor_residual, vida_util_meses,
		       tasa_deduccion_anual, fecha_compra, estado, depreciacion_acumulada, valor_actual,
		       created_at, updated_at
		FROM activos_fijos WHERE id = $1`
	var a entity.ActivoFijo
	var descripcion *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&a.ID, &a.ClienteID, &a.Nombre, &descripcion, &a.Costo, &a.ValorResidual, &a.VidaUtilMeses,
		&a.TasaDeduccionAnual, &a.FechaCompra, &a.Estado, &a.DepreciacionAcumulada, &a.ValorActual,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get activo: %w", err)
	}
	a.Descripcion = deref(descripcion)
	return &a, nil
}

// ListByCliente lista activos del cliente con paginación.
func (r *ActivoFijoRepo) ListByCliente(clienteID string, limit, offset int) ([]*entity.ActivoFijo, error) {
	query := `
		SELECT id, cliente_id, nombre, descripcion, costo, valor_residual, vida_util_meses,
		       tasa_deduccion_anual, fecha_compra, estado, depreciacion_acumulada, valor_actual,
		       created_at, updated_at
		FROM activos_fijos WHERE cliente_id = $1
		ORDER BY fecha_compra DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, clienteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list activos: %w", err)
	}
	defer rows.Close()

	var out []*entity.ActivoFijo
	for rows.Next() {
		var a entity.ActivoFijo
		var descripcion *string
		if err := rows.Scan(
			&a.ID, &a.ClienteID, &a.Nombre, &descripcion, &a.Costo, &a.ValorResidual, &a.VidaUtilMeses,
			&a.TasaDeduccionAnual, &a.FechaCompra, &a.Estado, &a.DepreciacionAcumulada, &a.ValorActual,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan activo: %w", err)
		}
		a.Descripcion = deref(descripcion)
		out = append(out, &a)
	}
	return out, rows.Err()
}

// Update actualiza estado y valuación del activo.
func (r *ActivoFijoRepo) Update(a *entity.ActivoFijo) error {
	query := `
		UPDATE activos_fijos SET
			nombre = $2, descripcion = $3, estado = $4,
			depreciacion_acumulada = $5, valor_actual = $6, updated_at = $7
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		a.ID, a.Nombre, nullIfEmpty(a.Descripcion), a.Estado,
		a.DepreciacionAcumulada, a.ValorActual, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update activo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────

// DepreciacionRepo implementación del libro mensual de depreciación. El libro
// es append-only; no hay UPDATE ni DELETE.
type DepreciacionRepo struct {
	q Querier
}

// NewDepreciacionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDepreciacionRepository(q Querier) *DepreciacionRepo {
	return &DepreciacionRepo{q: q}
}

// Create agrega un renglón al libro. (activo_id, ejercicio, mes) es único.
func (r *DepreciacionRepo) Create(reg *entity.DepreciacionMensual) error {
	query := `
		INSERT INTO depreciaciones_mensuales (
			id, activo_id, cliente_id, ejercicio, mes, monto,
			acumulada_antes, acumulada_despues, valor_antes, valor_despues, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		reg.ID, reg.ActivoID, reg.ClienteID, reg.Ejercicio, reg.Mes, reg.Monto,
		reg.AcumuladaAntes, reg.AcumuladaDespues, reg.ValorAntes, reg.ValorDespues, reg.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert depreciacion: %w", err)
	}
	return nil
}

// ListByActivo devuelve el libro del activo en orden cronológico.
func (r *DepreciacionRepo) ListByActivo(activoID string) ([]*entity.DepreciacionMensual, error) {
	query := `
		SELECT id, activo_id, cliente_id, ejercicio, mes, monto,
		       acumulada_antes, acumulada_despues, valor_antes, valor_despues, created_at
		FROM depreciaciones_mensuales
		WHERE activo_id = $1 ORDER BY ejercicio ASC, mes ASC`
	rows, err := r.q.Query(context.Background(), query, activoID)
	if err != nil {
		return nil, fmt.Errorf("list depreciaciones: %w", err)
	}
	defer rows.Close()

	var out []*entity.DepreciacionMensual
	for rows.Next() {
		var d entity.DepreciacionMensual
		if err := rows.Scan(
			&d.ID, &d.ActivoID, &d.ClienteID, &d.Ejercicio, &d.Mes, &d.Monto,
			&d.AcumuladaAntes, &d.AcumuladaDespues, &d.ValorAntes, &d.ValorDespues, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan depreciacion: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// UltimoRegistro devuelve el renglón más reciente del activo, o nil.
func (r *DepreciacionRepo) UltimoRegistro(activoID string) (*entity.DepreciacionMensual, error) {
	query := `
		SELECT id, activo_id, cliente_id, ejercicio, mes, monto,
		       acumulada_antes, acumulada_despues, valor_antes, valor_despues, created_at
		FROM depreciaciones_mensuales
		WHERE activo_id = $1 ORDER BY ejercicio DESC, mes DESC LIMIT 1`
	var d entity.DepreciacionMensual
	err := r.q.QueryRow(context.Background(), query, activoID).Scan(
		&d.ID, &d.ActivoID, &d.ClienteID, &d.Ejercicio, &d.Mes, &d.Monto,
		&d.AcumuladaAntes, &d.AcumuladaDespues, &d.ValorAntes, &d.ValorDespues, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ultimo registro: %w", err)
	}
	return &d, nil
}
