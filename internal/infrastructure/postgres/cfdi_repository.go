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

var _ repository.CFDIRepository = (*CFDIRepo)(nil)

// CFDIRepo implementación del puerto CFDIRepository sobre PostgreSQL (usable con pool o tx).
type CFDIRepo struct {
	q Querier
}

// NewCFDIRepository construye el adaptador de persistencia de comprobantes. Pasar pool o tx (Querier).
func NewCFDIRepository(q Querier) *CFDIRepo {
	return &CFDIRepo{q: q}
}

const cfdiColumns = `
	id, cliente_id, uuid, uuid_sintetico, version, tipo_de_comprobante,
	es_ingreso, es_egreso, esta_cancelado, fecha, serie, folio,
	rfc_emisor, nombre_emisor, regimen_fiscal_emisor,
	rfc_receptor, nombre_receptor, regimen_fiscal_receptor, uso_cfdi,
	metodo_pago, forma_pago, moneda, docs_complemento_pago,
	subtotal, descuento, total, impuesto_trasladado, ieps_trasladado,
	iva_retenido, isr_retenido,
	es_deducible, mes_deduccion, gravado_isr, gravado_iva, gravado_modificado,
	categoria, bloqueado, created_at, updated_at`

// Create persiste un comprobante. El par (cliente_id, uuid) es único; un
// duplicado retorna domain.ErrDuplicate.
func (r *CFDIRepo) Create(c *entity.CFDI) error {
	query := `
		INSERT INTO cfdis (` + cfdiColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
		        $29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39)`
	_, err := r.q.Exec(context.Background(), query,
		c.ID, c.ClienteID, c.UUID, c.UUIDSintetico, c.Version, c.TipoDeComprobante,
		c.EsIngreso, c.EsEgreso, c.EstaCancelado, c.Fecha, nullIfEmpty(c.Serie), nullIfEmpty(c.Folio),
		c.RFCEmisor, c.NombreEmisor, nullIfEmpty(c.RegimenFiscalEmisor),
		c.RFCReceptor, c.NombreReceptor, nullIfEmpty(c.RegimenFiscalReceptor), nullIfEmpty(c.UsoCFDI),
		nullIfEmpty(c.MetodoPago), nullIfEmpty(c.FormaPago), nullIfEmpty(c.Moneda), c.DocsRelacionadosComplementoPago,
		c.SubTotal, c.Descuento, c.Total, c.ImpuestoTrasladado, c.IEPSTrasladado,
		c.IVARetenido, c.ISRRetenido,
		c.EsDeducible, c.MesDeduccion, c.GravadoISR, c.GravadoIVA, c.GravadoModificado,
		nullIfEmpty(c.Categoria), c.Bloqueado, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert cfdi: %w", err)
	}
	return nil
}

// GetByID obtiene un comprobante por llave interna.
func (r *CFDIRepo) GetByID(id string) (*entity.CFDI, error) {
	query := `SELECT ` + cfdiColumns + ` FROM cfdis WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get cfdi")
}

// GetByUUID obtiene un comprobante por folio fiscal dentro del cliente.
func (r *CFDIRepo) GetByUUID(clienteID, uuid string) (*entity.CFDI, error) {
	query := `SELECT ` + cfdiColumns + ` FROM cfdis WHERE cliente_id = $1 AND uuid = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, clienteID, uuid), "get cfdi by uuid")
}

// ListByCliente lista comprobantes con paginación; ejercicio 0 = todos.
func (r *CFDIRepo) ListByCliente(clienteID string, ejercicio int, limit, offset int) ([]*entity.CFDI, error) {
	query := `
		SELECT ` + cfdiColumns + ` FROM cfdis
		WHERE cliente_id = $1 AND ($2 = 0 OR EXTRACT(YEAR FROM fecha) = $2)
		ORDER BY fecha DESC, created_at DESC
		LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(context.Background(), query, clienteID, ejercicio, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list cfdis: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListByClienteEjercicio devuelve el ejercicio completo sin paginar; el
// cálculo fiscal agrega siempre sobre el conjunto entero.
func (r *CFDIRepo) ListByClienteEjercicio(clienteID string, ejercicio int) ([]*entity.CFDI, error) {
	query := `
		SELECT ` + cfdiColumns + ` FROM cfdis
		WHERE cliente_id = $1 AND EXTRACT(YEAR FROM fecha) = $2
		ORDER BY fecha ASC`
	rows, err := r.q.Query(context.Background(), query, clienteID, ejercicio)
	if err != nil {
		return nil, fmt.Errorf("list cfdis ejercicio: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// UpdateClasificacion persiste solo los campos de clasificación fiscal.
func (r *CFDIRepo) UpdateClasificacion(c *entity.CFDI) error {
	query := `
		UPDATE cfdis SET
			es_deducible = $2, mes_deduccion = $3, gravado_isr = $4, gravado_iva = $5,
			gravado_modificado = $6, categoria = $7, bloqueado = $8, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(context.Background(), query,
		c.ID, c.EsDeducible, c.MesDeduccion, c.GravadoISR, c.GravadoIVA,
		c.GravadoModificado, nullIfEmpty(c.Categoria), c.Bloqueado,
	)
	if err != nil {
		return fmt.Errorf("update clasificacion: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarcarCancelado fija la bandera de cancelación (verificación SAT).
func (r *CFDIRepo) MarcarCancelado(id string, cancelado bool) error {
	cmd, err := r.q.Exec(context.Background(),
		`UPDATE cfdis SET esta_cancelado = $2, updated_at = now() WHERE id = $1`,
		id, cancelado,
	)
	if err != nil {
		return fmt.Errorf("marcar cancelado: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AgregarComplementoPago liga el UUID de un complemento de pago al CFDI PPD.
// array_append dentro del UPDATE evita el read-modify-write.
func (r *CFDIRepo) AgregarComplementoPago(id string, uuidComplemento string) error {
	cmd, err := r.q.Exec(context.Background(), `
		UPDATE cfdis
		SET docs_complemento_pago = array_append(docs_complemento_pago, $2), updated_at = now()
		WHERE id = $1 AND NOT ($2 = ANY(docs_complemento_pago))`,
		id, uuidComplemento,
	)
	if err != nil {
		return fmt.Errorf("agregar complemento: %w", err)
	}
	// 0 filas: o no existe el CFDI o el complemento ya estaba ligado; ambos
	// casos son idempotentes para el sincronizador.
	_ = cmd
	return nil
}

// Delete elimina físicamente; solo vía acción explícita de administrador.
func (r *CFDIRepo) Delete(id string) error {
	cmd, err := r.q.Exec(context.Background(), `DELETE FROM cfdis WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cfdi: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CFDIRepo) scanOne(row pgx.Row, op string) (*entity.CFDI, error) {
	c, err := scanCFDI(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (r *CFDIRepo) scanAll(rows pgx.Rows) ([]*entity.CFDI, error) {
	var out []*entity.CFDI
	for rows.Next() {
		c, err := scanCFDI(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cfdi: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCFDI(row pgx.Row) (*entity.CFDI, error) {
	var c entity.CFDI
	var serie, folio, regimenEmisor, regimenReceptor, usoCFDI *string
	var metodoPago, formaPago, moneda, categoria *string
	err := row.Scan(
		&c.ID, &c.ClienteID, &c.UUID, &c.UUIDSintetico, &c.Version, &c.TipoDeComprobante,
		&c.EsIngreso, &c.EsEgreso, &c.EstaCancelado, &c.Fecha, &serie, &folio,
		&c.RFCEmisor, &c.NombreEmisor, &regimenEmisor,
		&c.RFCReceptor, &c.NombreReceptor, &regimenReceptor, &usoCFDI,
		&metodoPago, &formaPago, &moneda, &c.DocsRelacionadosComplementoPago,
		&c.SubTotal, &c.Descuento, &c.Total, &c.ImpuestoTrasladado, &c.IEPSTrasladado,
		&c.IVARetenido, &c.ISRRetenido,
		&c.EsDeducible, &c.MesDeduccion, &c.GravadoISR, &c.GravadoIVA, &c.GravadoModificado,
		&categoria, &c.Bloqueado, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Serie = deref(serie)
	c.Folio = deref(folio)
	c.RegimenFiscalEmisor = deref(regimenEmisor)
	c.RegimenFiscalReceptor = deref(regimenReceptor)
	c.UsoCFDI = deref(usoCFDI)
	c.MetodoPago = deref(metodoPago)
	c.FormaPago = deref(formaPago)
	c.Moneda = deref(moneda)
	c.Categoria = deref(categoria)
	return &c, nil
}
