package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/domain"
	domaincfdi "github.com/kontia/kontia-api/internal/domain/cfdi"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

const xmlBase = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
  Version="4.0" Fecha="2024-03-15T10:30:00" SubTotal="1000.00" Total="1160.00"
  Moneda="MXN" TipoDeComprobante="I" MetodoPago="PUE" LugarExpedicion="64000">
  <cfdi:Emisor Rfc="AAA010101AAA" Nombre="Emisor Uno" RegimenFiscal="612"/>
  <cfdi:Receptor Rfc="BBB020202BB2" Nombre="Receptor Dos" UsoCFDI="G03" RegimenFiscalReceptor="601" DomicilioFiscalReceptor="64000"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="80141600" Cantidad="1" Descripcion="Servicios" ValorUnitario="1000.00" Importe="1000.00" ObjetoImp="02"/>
  </cfdi:Conceptos>
  <cfdi:Complemento>
    <tfd:TimbreFiscalDigital Version="1.1" UUID="AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001" FechaTimbrado="2024-03-15T10:31:02" RfcProvCertif="SAT970701NN3"/>
  </cfdi:Complemento>
</cfdi:Comprobante>`

// conUUID genera una variante del XML base con otro UUID de timbre.
func conUUID(uuid string) []byte {
	return []byte(strings.ReplaceAll(xmlBase, "AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001", uuid))
}

type cfdiRepoFake struct {
	creados []*entity.CFDI
}

func (f *cfdiRepoFake) Create(c *entity.CFDI) error {
	for _, prev := range f.creados {
		if prev.ID == c.ID {
			return domain.ErrDuplicate
		}
	}
	f.creados = append(f.creados, c)
	return nil
}
func (f *cfdiRepoFake) GetByID(string) (*entity.CFDI, error) { return nil, nil }
func (f *cfdiRepoFake) GetByUUID(_, uuid string) (*entity.CFDI, error) {
	for _, c := range f.creados {
		if c.UUID == uuid {
			return c, nil
		}
	}
	return nil, nil
}
func (f *cfdiRepoFake) ListByCliente(string, int, int, int) ([]*entity.CFDI, error) {
	return f.creados, nil
}
func (f *cfdiRepoFake) ListByClienteEjercicio(string, int) ([]*entity.CFDI, error) {
	return f.creados, nil
}
func (f *cfdiRepoFake) UpdateClasificacion(*entity.CFDI) error   { return nil }
func (f *cfdiRepoFake) MarcarCancelado(string, bool) error       { return nil }
func (f *cfdiRepoFake) AgregarComplementoPago(_, _ string) error { return nil }
func (f *cfdiRepoFake) Delete(string) error                      { return nil }

func clienteEmisor() *entity.Cliente {
	return &entity.Cliente{ID: "cli-1", RFC: "AAA010101AAA"}
}

func TestImportarXML_AsignaIdentidadYMarcasDeTiempo(t *testing.T) {
	repo := &cfdiRepoFake{}
	c, err := importarXML(domaincfdi.NewParser(), repo, clienteEmisor(), conUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001"))
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, c.CreatedAt, c.UpdatedAt)
}

// TestImportarXML_LoteConVariosComprobantes: dos XML distintos del mismo lote
// se persisten con identidades propias; ninguno choca con el anterior.
func TestImportarXML_LoteConVariosComprobantes(t *testing.T) {
	repo := &cfdiRepoFake{}
	parser := domaincfdi.NewParser()
	cliente := clienteEmisor()

	primero, err := importarXML(parser, repo, cliente, conUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001"))
	require.NoError(t, err)
	segundo, err := importarXML(parser, repo, cliente, conUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0002"))
	require.NoError(t, err)

	assert.NotEqual(t, primero.ID, segundo.ID)
	assert.Len(t, repo.creados, 2)
}

func TestImportarXML_UUIDRepetidoEsDuplicado(t *testing.T) {
	repo := &cfdiRepoFake{}
	parser := domaincfdi.NewParser()
	cliente := clienteEmisor()

	_, err := importarXML(parser, repo, cliente, conUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001"))
	require.NoError(t, err)
	_, err = importarXML(parser, repo, cliente, conUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEFFFF0001"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Len(t, repo.creados, 1)
}

func TestImportarXML_XMLInvalidoFalla(t *testing.T) {
	repo := &cfdiRepoFake{}
	_, err := importarXML(domaincfdi.NewParser(), repo, clienteEmisor(), []byte("no es xml"))
	assert.Error(t, err)
	assert.Empty(t, repo.creados)
}
