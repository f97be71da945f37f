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

var _ repository.DeclaracionRepository = (*DeclaracionRepo)(nil)

// DeclaracionRepo implementación del puerto DeclaracionRepository sobre PostgreSQL (usable con pool o tx).
type DeclaracionRepo struct {
	q Querier
}

// NewDeclaracionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeclaracionRepository(q Querier) *DeclaracionRepo {
	return &DeclaracionRepo{q: q}
}

const declaracionColumns = `
	id, cliente_id, tipo, ejercicio, mes,
	ingresos_acumulados, deducciones_acumuladas, isr_retenido_acumulado,
	isr_causado, pagos_provisionales_previos, isr_cargo, iva_cargo,
	saldo_aplicado_isr, saldo_aplicado_iva,
	estado, fecha_presentacion, created_at, updated_at`

// Create persiste una declaración. (cliente, tipo, ejercicio, mes) es único.
func (r *DeclaracionRepo) Create(d *entity.Declaracion) error {
	query := `
		INSERT INTO declaraciones (` + declaracionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.q.Exec(context.Background(), query,
		d.ID, d.ClienteID, d.Tipo, d.Ejercicio, d.Mes,
		d.IngresosAcumulados, d.DeduccionesAcumuladas, d.ISRRetenidoAcumulado,
		d.ISRCausado, d.PagosProvisionalesPrevios, d.ISRCargo, d.IVACargo,
		d.SaldoAplicadoISR, d.SaldoAplicadoIVA,
		d.Estado, d.FechaPresentacion, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert declaracion: %w", err)
	}
	return nil
}

// GetByID obtiene una declaración por ID.
func (r *DeclaracionRepo) GetByID(id string) (*entity.Declaracion, error) {
	query := `SELECT ` + declaracionColumns + ` FROM declaraciones WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByPeriodo obtiene la declaración del periodo, o nil.
func (r *DeclaracionRepo) GetByPeriodo(clienteID string, ejercicio, mes int, tipo string) (*entity.Declaracion, error) {
	query := `
		SELECT ` + declaracionColumns + ` FROM declaraciones
		WHERE cliente_id = $1 AND ejercicio = $2 AND mes = $3 AND tipo = $4`
	return r.scanOne(r.q.QueryRow(context.Background(), query, clienteID, ejercicio, mes, tipo))
}

// ListByEjercicio incluye borradores y presentadas, en orden de mes.
func (r *DeclaracionRepo) ListByEjercicio(clienteID string, ejercicio int) ([]*entity.Declaracion, error) {
	query := `
		SELECT ` + declaracionColumns + ` FROM declaraciones
		WHERE cliente_id = $1 AND ejercicio = $2 ORDER BY mes ASC`
	rows, err := r.q.Query(context.Background(), query, clienteID, ejercicio)
	if err != nil {
		return nil, fmt.Errorf("list declaraciones: %w", err)
	}
	defer rows.Close()

	var out []*entity.Declaracion
	for rows.Next() {
		d, err := scanDeclaracion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaracion: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Update reescribe las cifras y el estado de la declaración.
func (r *DeclaracionRepo) Update(d *entity.Declaracion) error {
	query := `
		UPDATE declaraciones SET
			ingresos_acumulados = $2, deducciones_acumuladas = $3, isr_retenido_acumulado = $4,
			isr_causado = $5, pagos_provisionales_previos = $6, isr_cargo = $7, iva_cargo = $8,
			saldo_aplicado_isr = $9, saldo_aplicado_iva = $10,
			estado = $11, fecha_presentacion = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		d.ID, d.IngresosAcumulados, d.DeduccionesAcumuladas, d.ISRRetenidoAcumulado,
		d.ISRCausado, d.PagosProvisionalesPrevios, d.ISRCargo, d.IVACargo,
		d.SaldoAplicadoISR, d.SaldoAplicadoIVA,
		d.Estado, d.FechaPresentacion, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update declaracion: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DeclaracionRepo) scanOne(row pgx.Row) (*entity.Declaracion, error) {
	d, err := scanDeclaracion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get declaracion: %w", err)
	}
	return d, nil
}

func scanDeclaracion(row pgx.Row) (*entity.Declaracion, error) {
	var d entity.Declaracion
	err := row.Scan(
		&d.ID, &d.ClienteID, &d.Tipo, &d.Ejercicio, &d.Mes,
		&d.IngresosAcumulados, &d.DeduccionesAcumuladas, &d.ISRRetenidoAcumulado,
		&d.ISRCausado, &d.PagosProvisionalesPrevios, &d.ISRCargo, &d.IVACargo,
		&d.SaldoAplicadoISR, &d.SaldoAplicadoIVA,
		&d.Estado, &d.FechaPresentacion, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
