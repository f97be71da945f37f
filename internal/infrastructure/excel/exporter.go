// Package excel genera reportes XLSX: listado de comprobantes y resumen
// fiscal anual.
package excel

import (
	"bytes"
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/fiscal"
)

// Exporter arma libros de Excel para descarga desde la API.
type Exporter struct{}

// NewExporter crea el exportador.
func NewExporter() *Exporter {
	return &Exporter{}
}

var meses = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ExportarCFDIs genera un libro con un renglón por comprobante.
func (e *Exporter) ExportarCFDIs(cfdis []*entity.CFDI) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const hoja = "CFDIs"
	f.SetSheetName("Sheet1", hoja)

	encabezados := []string{
		"UUID", "Fecha", "Tipo", "RFC Emisor", "Emisor", "RFC Receptor", "Receptor",
		"Subtotal", "IVA Trasladado", "IVA Retenido", "ISR Retenido", "Total",
		"Deducible", "Mes", "Gravado ISR", "Gravado IVA", "Categoría", "Cancelado",
	}
	for i, h := range encabezados {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(hoja, celda, h)
	}

	for idx, c := range cfdis {
		fila := idx + 2
		valores := []interface{}{
			c.UUID, c.Fecha.Format("2006-01-02"), c.TipoDeComprobante,
			c.RFCEmisor, c.NombreEmisor, c.RFCReceptor, c.NombreReceptor,
			montoCelda(c.SubTotal.InexactFloat64()), montoCelda(c.ImpuestoTrasladado.InexactFloat64()),
			montoCelda(c.IVARetenido.InexactFloat64()), montoCelda(c.ISRRetenido.InexactFloat64()),
			montoCelda(c.Total.InexactFloat64()),
			siNo(c.EsDeducible), etiquetaMes(c.MesDeduccion),
			montoCelda(c.GravadoISR.InexactFloat64()), montoCelda(c.GravadoIVA.InexactFloat64()),
			c.Categoria, siNo(c.EstaCancelado),
		}
		for col, v := range valores {
			celda, _ := excelize.CoordinatesToCellName(col+1, fila)
			f.SetCellValue(hoja, celda, v)
		}
	}

	f.SetColWidth(hoja, "A", "A", 38)
	f.SetColWidth(hoja, "B", "G", 16)

	return escribir(f)
}

// ExportarResumen genera un libro con el resumen fiscal del ejercicio: un
// renglón por mes más totales y deducciones anuales.
func (e *Exporter) ExportarResumen(r *fiscal.ResumenAnual) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	hoja := fmt.Sprintf("Resumen %d", r.Ejercicio)
	f.SetSheetName("Sheet1", hoja)

	encabezados := []string{
		"Mes", "Ingresos Gravados ISR", "ISR Retenido", "IVA Trasladado", "IVA Retenido",
		"Deducciones ISR", "IVA Acreditable", "Utilidad", "IVA a Pagar", "IVA Pendiente", "CFDI",
	}
	for i, h := range encabezados {
		celda, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(hoja, celda, h)
	}

	escribeMes := func(fila int, etiqueta string, m fiscal.ResumenMensual) {
		valores := []interface{}{
			etiqueta,
			montoCelda(m.Ingresos.ISRGravado.InexactFloat64()),
			montoCelda(m.Ingresos.ISRRetenido.InexactFloat64()),
			montoCelda(m.Ingresos.IVATrasladado.InexactFloat64()),
			montoCelda(m.Ingresos.IVARetenido.InexactFloat64()),
			montoCelda(m.Egresos.ISRDeducible.InexactFloat64()),
			montoCelda(m.Egresos.IVAAcreditable.InexactFloat64()),
			montoCelda(m.UtilidadBruta.InexactFloat64()),
			montoCelda(m.IVAAPagar.InexactFloat64()),
			montoCelda(m.IVAPendiente.InexactFloat64()),
			m.Ingresos.NumCFDI + m.Egresos.NumCFDI,
		}
		for col, v := range valores {
			celda, _ := excelize.CoordinatesToCellName(col+1, fila)
			f.SetCellValue(hoja, celda, v)
		}
	}

	for i, m := range r.Meses {
		escribeMes(i+2, meses[i], m)
	}
	escribeMes(15, "Total", r.Totales)

	f.SetCellValue(hoja, "A17", "Deducciones anuales")
	f.SetCellValue(hoja, "F17", montoCelda(r.DeduccionesAnuales.ISRDeducible.InexactFloat64()))
	f.SetCellValue(hoja, "G17", montoCelda(r.DeduccionesAnuales.IVAAcreditable.InexactFloat64()))

	f.SetColWidth(hoja, "A", "A", 20)
	f.SetColWidth(hoja, "B", "K", 18)

	return escribir(f)
}

func escribir(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("escribir xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// montoCelda redondea a centavos para la celda; los cálculos siguen siendo
// decimal, esto es solo presentación.
func montoCelda(v float64) float64 {
	return math.Round(v*100) / 100
}

func siNo(b bool) string {
	if b {
		return "Sí"
	}
	return "No"
}

func etiquetaMes(mes int) string {
	switch {
	case mes >= 1 && mes <= 12:
		return meses[mes-1]
	case mes == entity.MesDeduccionAnual:
		return "Anual"
	default:
		return ""
	}
}
