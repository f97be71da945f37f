// Package pdf genera el acuse en PDF de una declaración calculada: periodo,
// bases acumuladas, ISR e IVA a cargo y saldos acreditados.
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 20, Green: 60, Blue: 100}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

var nombresMes = [13]string{"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}

// AcuseGenerator genera el acuse de declaración usando Maroto v2.
type AcuseGenerator struct{}

// NewAcuseGenerator construye el generador.
func NewAcuseGenerator() *AcuseGenerator { return &AcuseGenerator{} }

// GenerarAcuse genera el PDF y devuelve sus bytes.
func (g *AcuseGenerator) GenerarAcuse(_ context.Context, d *entity.Declaracion, cliente *entity.Cliente) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acuse de declaración", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(d, cliente))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(seccionRow("BASES ACUMULADAS DEL EJERCICIO"))
	m.AddRows(
		cifraRow("Ingresos acumulados", d.IngresosAcumulados),
		cifraRow("Deducciones acumuladas", d.DeduccionesAcumuladas),
		cifraRow("ISR retenido acumulado", d.ISRRetenidoAcumulado),
	)
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(seccionRow("DETERMINACIÓN DEL PAGO"))
	m.AddRows(
		cifraRow("ISR causado", d.ISRCausado),
		cifraRow("Pagos provisionales previos", d.PagosProvisionalesPrevios),
		cifraRow("Saldo a favor aplicado (ISR)", d.SaldoAplicadoISR),
		cifraRow("Saldo a favor aplicado (IVA)", d.SaldoAplicadoIVA),
	)
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(totalRow("ISR A CARGO", d.ISRCargo))
	m.AddRows(totalRow("IVA A CARGO", d.IVACargo))

	m.AddRows(line.NewRow(3))
	m.AddRows(pieRow(d))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar acuse: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(d *entity.Declaracion, cliente *entity.Cliente) core.Row {
	periodo := fmt.Sprintf("Ejercicio %d", d.Ejercicio)
	if d.Tipo == entity.DeclaracionProvisional && d.Mes >= 1 && d.Mes <= 12 {
		periodo = fmt.Sprintf("%s %d", nombresMes[d.Mes], d.Ejercicio)
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(cliente.Nombre, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("RFC: "+cliente.RFC, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ACUSE DE DECLARACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(periodo, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Estado: "+d.Estado, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func seccionRow(titulo string) core.Row {
	return row.New(8).Add(
		col.New(12).Add(text.New(titulo, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2,
		})),
	)
}

func cifraRow(etiqueta string, monto decimal.Decimal) core.Row {
	return row.New(6).Add(
		col.New(8).Add(text.New(etiqueta, props.Text{Size: 9, Top: 1})),
		col.New(4).Add(text.New("$ "+monto.StringFixed(2), props.Text{
			Size: 9, Align: align.Right, Top: 1,
		})),
	)
}

func totalRow(etiqueta string, monto decimal.Decimal) core.Row {
	return row.New(8).Add(
		col.New(8).Add(text.New(etiqueta, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 1,
		})),
		col.New(4).Add(text.New("$ "+monto.StringFixed(2), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 1,
		})),
	)
}

func pieRow(d *entity.Declaracion) core.Row {
	leyenda := "Documento de trabajo generado a partir de los CFDI clasificados. No sustituye el acuse oficial del SAT."
	if d.FechaPresentacion != nil {
		leyenda = fmt.Sprintf("Presentada el %s. %s", d.FechaPresentacion.Format("02/01/2006"), leyenda)
	}
	return row.New(8).Add(
		col.New(12).Add(text.New(leyenda, props.Text{Size: 7, Color: colorGray, Top: 1})),
	)
}
