// Package cfdi: parseo de comprobantes fiscales (CFDI 3.3 / 4.0) del SAT a la
// entidad normalizada. El parser es puro: no tiene efectos secundarios y los
// errores se retornan siempre, nunca se registran y se tragan.
package cfdi

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kontia/kontia-api/internal/domain/entity"
)

// Errores del parser. Malformación y comprobantes ajenos al cliente son fallas
// explícitas; solo los montos faltantes degradan a cero.
var (
	ErrXMLInvalido        = errors.New("cfdi: xml inválido")
	ErrComprobanteAusente = errors.New("cfdi: el documento no contiene un nodo Comprobante")
	ErrCFDIAjeno          = errors.New("cfdi: el comprobante no corresponde al RFC del cliente")
)

// TasaIVA es la tasa general de IVA usada para derivar bases gravables.
var TasaIVA = decimal.NewFromFloat(0.16)

// DerivarGravado calcula las bases gravables a partir del IVA trasladado:
// gravadoISR = trasladado / 0.16 y gravadoIVA = gravadoISR * 0.16, ambos a dos
// decimales. No debe invocarse cuando GravadoModificado es true.
func DerivarGravado(impuestoTrasladado decimal.Decimal) (gravadoISR, gravadoIVA decimal.Decimal) {
	gravadoISR = impuestoTrasladado.Div(TasaIVA).Round(2)
	gravadoIVA = gravadoISR.Mul(TasaIVA).Round(2)
	return gravadoISR, gravadoIVA
}

// Parser convierte XML de CFDI en entidades. Sin estado; seguro para uso concurrente.
type Parser struct{}

// NewParser crea el parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse deserializa un CFDI y determina su dirección (ingreso/egreso) respecto
// al RFC del cliente. Si ninguno de los dos lados del comprobante coincide con
// el cliente se retorna ErrCFDIAjeno.
func (p *Parser) Parse(xmlData []byte, clienteID, clienteRFC string) (*entity.CFDI, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrXMLInvalido, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Comprobante" {
		return nil, ErrComprobanteAusente
	}

	c := &entity.CFDI{
		ClienteID:  clienteID,
		Version:    attr(root, "Version", "version"),
		Serie:      attr(root, "Serie", "serie"),
		Folio:      attr(root, "Folio", "folio"),
		Moneda:     attr(root, "Moneda"),
		MetodoPago: attr(root, "MetodoPago"),
		FormaPago:  attr(root, "FormaPago"),
	}
	c.TipoDeComprobante = entity.TipoComprobanteDesdeCodigo(attr(root, "TipoDeComprobante", "tipoDeComprobante"))
	c.Fecha = parseFecha(attr(root, "Fecha", "fecha"))
	c.SubTotal = parseMonto(attr(root, "SubTotal", "subTotal"))
	c.Descuento = parseMonto(attr(root, "Descuento", "descuento"))
	c.Total = parseMonto(attr(root, "Total", "total"))

	if emisor := childByTag(root, "Emisor"); emisor != nil {
		c.RFCEmisor = entity.NormalizaRFC(attr(emisor, "Rfc", "rfc"))
		c.NombreEmisor = attr(emisor, "Nombre", "nombre")
		c.RegimenFiscalEmisor = attr(emisor, "RegimenFiscal")
	}
	if receptor := childByTag(root, "Receptor"); receptor != nil {
		c.RFCReceptor = entity.NormalizaRFC(attr(receptor, "Rfc", "rfc"))
		c.NombreReceptor = attr(receptor, "Nombre", "nombre")
		c.RegimenFiscalReceptor = attr(receptor, "RegimenFiscalReceptor")
		c.UsoCFDI = attr(receptor, "UsoCFDI")
	}

	// Dirección del comprobante respecto al cliente.
	rfc := entity.NormalizaRFC(clienteRFC)
	switch rfc {
	case "":
		return nil, fmt.Errorf("%w: rfc del cliente vacío", ErrCFDIAjeno)
	case c.RFCEmisor:
		c.EsIngreso = true
	case c.RFCReceptor:
		c.EsEgreso = true
	default:
		return nil, fmt.Errorf("%w: emisor %s, receptor %s, cliente %s",
			ErrCFDIAjeno, c.RFCEmisor, c.RFCReceptor, rfc)
	}

	p.sumarImpuestos(root, c)

	// Folio fiscal: primero el TimbreFiscalDigital, después cualquier atributo
	// UUID del documento, y como último recurso uno sintético marcado como
	// condición de calidad de datos.
	c.UUID = buscarUUID(root)
	if c.UUID == "" {
		c.UUID = uuid.New().String()
		c.UUIDSintetico = true
	}

	// Bases gravables derivadas del IVA trasladado. El contador puede
	// sobreescribirlas después (GravadoModificado).
	c.GravadoISR, c.GravadoIVA = DerivarGravado(c.ImpuestoTrasladado)

	return c, nil
}

// BatchError asocia un archivo del lote con el error que produjo.
type BatchError struct {
	Archivo string
	Err     error
}

// ParseBatch procesa múltiples archivos XML. Los duplicados por UUID se
// descartan (gana la primera ocurrencia, sin mezclar campos); los errores de
// parseo se acumulan por archivo y no detienen el lote.
func (p *Parser) ParseBatch(files map[string][]byte, clienteID, clienteRFC string) ([]*entity.CFDI, []BatchError) {
	var (
		out    []*entity.CFDI
		fallas []BatchError
		vistos = make(map[string]bool)
	)
	for nombre, data := range files {
		c, err := p.Parse(data, clienteID, clienteRFC)
		if err != nil {
			fallas = append(fallas, BatchError{Archivo: nombre, Err: err})
			continue
		}
		if vistos[c.UUID] {
			continue // duplicado: se omite, no es error
		}
		vistos[c.UUID] = true
		out = append(out, c)
	}
	return out, fallas
}

// sumarImpuestos acumula traslados y retenciones por código de impuesto
// (001=ISR, 002=IVA, 003=IEPS) recorriendo los nodos de impuestos por
// concepto; si el comprobante no desglosa por concepto (CFDI antiguos) se usan
// los nodos de impuestos a nivel comprobante.
func (p *Parser) sumarImpuestos(root *etree.Element, c *entity.CFDI) {
	traslados := impuestosDeConceptos(root, "Traslado")
	retenciones := impuestosDeConceptos(root, "Retencion")
	if len(traslados) == 0 && len(retenciones) == 0 {
		if imp := childByTag(root, "Impuestos"); imp != nil {
			traslados = descendientes(imp, "Traslado")
			retenciones = descendientes(imp, "Retencion")
		}
	}
	for _, t := range traslados {
		importe := parseMonto(attr(t, "Importe", "importe"))
		switch attr(t, "Impuesto", "impuesto") {
		case entity.ImpuestoIVA:
			c.ImpuestoTrasladado = c.ImpuestoTrasladado.Add(importe)
		case entity.ImpuestoIEPS:
			c.IEPSTrasladado = c.IEPSTrasladado.Add(importe)
		}
	}
	for _, r := range retenciones {
		importe := parseMonto(attr(r, "Importe", "importe"))
		switch attr(r, "Impuesto", "impuesto") {
		case entity.ImpuestoISR:
			c.ISRRetenido = c.ISRRetenido.Add(importe)
		case entity.ImpuestoIVA:
			c.IVARetenido = c.IVARetenido.Add(importe)
		}
	}
}

// impuestosDeConceptos devuelve los nodos de impuesto (Traslado o Retencion)
// que cuelgan de algún Concepto.
func impuestosDeConceptos(root *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	conceptos := childByTag(root, "Conceptos")
	if conceptos == nil {
		return nil
	}
	for _, concepto := range conceptos.ChildElements() {
		if concepto.Tag != "Concepto" {
			continue
		}
		out = append(out, descendientes(concepto, tag)...)
	}
	return out
}

// buscarUUID extrae el folio fiscal: TimbreFiscalDigital@UUID, o en su defecto
// el primer atributo UUID de cualquier elemento del documento.
func buscarUUID(root *etree.Element) string {
	if tfd := descendienteUnico(root, "TimbreFiscalDigital"); tfd != nil {
		if u := attr(tfd, "UUID", "uuid"); u != "" {
			return u
		}
	}
	var encontrado string
	var recorre func(el *etree.Element)
	recorre = func(el *etree.Element) {
		if encontrado != "" {
			return
		}
		if u := attr(el, "UUID", "uuid"); u != "" {
			encontrado = u
			return
		}
		for _, hijo := range el.ChildElements() {
			recorre(hijo)
		}
	}
	recorre(root)
	return encontrado
}

// ── Helpers de recorrido tolerantes a namespace ───────────────────────────────

func childByTag(el *etree.Element, tag string) *etree.Element {
	for _, hijo := range el.ChildElements() {
		if hijo.Tag == tag {
			return hijo
		}
	}
	return nil
}

func descendientes(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, hijo := range el.ChildElements() {
		if hijo.Tag == tag {
			out = append(out, hijo)
		}
		out = append(out, descendientes(hijo, tag)...)
	}
	return out
}

func descendienteUnico(el *etree.Element, tag string) *etree.Element {
	if lista := descendientes(el, tag); len(lista) > 0 {
		return lista[0]
	}
	return nil
}

func attr(el *etree.Element, nombres ...string) string {
	for _, n := range nombres {
		if a := el.SelectAttr(n); a != nil {
			return a.Value
		}
	}
	return ""
}

// parseMonto convierte un atributo monetario; vacío o malformado degrada a cero.
func parseMonto(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseFecha(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	// El CFDI usa fecha local sin zona: 2006-01-02T15:04:05
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
