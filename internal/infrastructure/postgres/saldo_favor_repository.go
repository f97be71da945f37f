package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

var _ repository.SaldoFavorRepository = (*SaldoFavorRepo)(nil)

// SaldoFavorRepo implementación del puerto SaldoFavorRepository sobre PostgreSQL (usable con pool o tx).
type SaldoFavorRepo struct {
	q Querier
}

// NewSaldoFavorRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaldoFavorRepository(q Querier) *SaldoFavorRepo {
	return &SaldoFavorRepo{q: q}
}

const saldoColumns = `
	id, cliente_id, tipo, monto_original, monto_aplicado, activo,
	mes_origen, ejercicio_origen, mes_aplicacion, ejercicio_aplicacion,
	concepto, eliminado_en, created_at, updated_at`

// Create persiste un saldo a favor.
func (r *SaldoFavorRepo) Create(s *entity.SaldoFavor) error {
	query := `
		INSERT INTO saldos_favor (` + saldoColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(context.Background(), query,
		s.ID, s.ClienteID, s.Tipo, s.MontoOriginal, s.MontoAplicado, s.Activo,
		s.MesOrigen, s.EjercicioOrigen, s.MesAplicacion, s.EjercicioAplicacion,
		nullIfEmpty(s.Concepto), s.EliminadoEn, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saldo: %w", err)
	}
	return nil
}

// GetByID obtiene un saldo por ID.
func (r *SaldoFavorRepo) GetByID(id string) (*entity.SaldoFavor, error) {
	query := `SELECT ` + saldoColumns + ` FROM saldos_favor WHERE id = $1`
	s, err := scanSaldo(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get saldo: %w", err)
	}
	return s, nil
}

// ListActivos devuelve los saldos vigentes del cliente; tipo vacío = ambos.
// Ordena por antigüedad del periodo de origen (los saldos se consumen FIFO).
func (r *SaldoFavorRepo) ListActivos(clienteID, tipo string) ([]*entity.SaldoFavor, error) {
	query := `
		SELECT ` + saldoColumns + ` FROM saldos_favor
		WHERE cliente_id = $1 AND activo AND eliminado_en IS NULL
		  AND ($2 = '' OR tipo = $2)
		ORDER BY ejercicio_origen ASC, mes_origen ASC`
	rows, err := r.q.Query(context.Background(), query, clienteID, tipo)
	if err != nil {
		return nil, fmt.Errorf("list saldos: %w", err)
	}
	defer rows.Close()

	var out []*entity.SaldoFavor
	for rows.Next() {
		s, err := scanSaldo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saldo: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Aplicar consume parte del saldo con un solo UPDATE condicionado: la
// condición monto_aplicado + monto <= monto_original se evalúa en la base,
// así dos consumos concurrentes nunca rebasan el original. Si la condición
// falla retorna domain.ErrSaldoInsuficiente sin modificar nada.
func (r *SaldoFavorRepo) Aplicar(id string, monto decimal.Decimal) (*entity.SaldoFavor, error) {
	if monto.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	query := `
		UPDATE saldos_favor SET
			monto_aplicado = monto_aplicado + $2,
			activo = (monto_original - monto_aplicado - $2) > 0,
			updated_at = now()
		WHERE id = $1 AND eliminado_en IS NULL
		  AND monto_aplicado + $2 <= monto_original
		RETURNING ` + saldoColumns
	s, err := scanSaldo(r.q.QueryRow(context.Background(), query, id, monto))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSaldoInsuficiente
		}
		return nil, fmt.Errorf("aplicar saldo: %w", err)
	}
	return s, nil
}

// Eliminar es baja lógica: conserva el renglón para auditoría.
func (r *SaldoFavorRepo) Eliminar(id string) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE saldos_favor SET activo = false, eliminado_en = now(), updated_at = now()
		WHERE id = $1 AND eliminado_en IS NULL`, id)
	if err != nil {
		return fmt.Errorf("eliminar saldo: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSaldo(row pgx.Row) (*entity.SaldoFavor, error) {
	var s entity.SaldoFavor
	var concepto *string
	err := row.Scan(
		&s.ID, &s.ClienteID, &s.Tipo, &s.MontoOriginal, &s.MontoAplicado, &s.Activo,
		&s.MesOrigen, &s.EjercicioOrigen, &s.MesAplicacion, &s.EjercicioAplicacion,
		&concepto, &s.EliminadoEn, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Concepto = deref(concepto)
	return &s, nil
}
