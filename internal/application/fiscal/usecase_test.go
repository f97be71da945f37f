package fiscal_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/application/fiscal"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type cfdiRepoFake struct {
	cfdis []*entity.CFDI
}

func (f *cfdiRepoFake) Create(*entity.CFDI) error                   { return nil }
func (f *cfdiRepoFake) GetByID(string) (*entity.CFDI, error)        { return nil, nil }
func (f *cfdiRepoFake) GetByUUID(_, _ string) (*entity.CFDI, error) { return nil, nil }
func (f *cfdiRepoFake) ListByCliente(string, int, int, int) ([]*entity.CFDI, error) {
	return f.cfdis, nil
}
func (f *cfdiRepoFake) ListByClienteEjercicio(string, int) ([]*entity.CFDI, error) {
	return f.cfdis, nil
}
func (f *cfdiRepoFake) UpdateClasificacion(*entity.CFDI) error   { return nil }
func (f *cfdiRepoFake) MarcarCancelado(string, bool) error       { return nil }
func (f *cfdiRepoFake) AgregarComplementoPago(_, _ string) error { return nil }
func (f *cfdiRepoFake) Delete(string) error                      { return nil }

type saldoRepoFake struct {
	saldos map[string]*entity.SaldoFavor
}

func (f *saldoRepoFake) Create(s *entity.SaldoFavor) error { f.saldos[s.ID] = s; return nil }
func (f *saldoRepoFake) GetByID(id string) (*entity.SaldoFavor, error) {
	return f.saldos[id], nil
}
func (f *saldoRepoFake) ListActivos(_, tipo string) ([]*entity.SaldoFavor, error) {
	var out []*entity.SaldoFavor
	for _, s := range f.saldos {
		if s.Activo && (tipo == "" || s.Tipo == tipo) {
			out = append(out, s)
		}
	}
	return out, nil
}

// Aplicar reproduce la semántica del UPDATE condicionado del repositorio real.
func (f *saldoRepoFake) Aplicar(id string, monto decimal.Decimal) (*entity.SaldoFavor, error) {
	s, ok := f.saldos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.MontoAplicado.Add(monto).GreaterThan(s.MontoOriginal) {
		return nil, domain.ErrSaldoInsuficiente
	}
	s.MontoAplicado = s.MontoAplicado.Add(monto)
	s.Activo = s.MontoOriginal.Sub(s.MontoAplicado).GreaterThan(decimal.Zero)
	return s, nil
}

func (f *saldoRepoFake) Eliminar(id string) error {
	if s, ok := f.saldos[id]; ok {
		now := time.Now()
		s.Activo = false
		s.EliminadoEn = &now
	}
	return nil
}

type declaracionRepoFake struct {
	decls map[string]*entity.Declaracion
}

func (f *declaracionRepoFake) Create(d *entity.Declaracion) error {
	cp := *d
	f.decls[d.ID] = &cp
	return nil
}
func (f *declaracionRepoFake) Update(d *entity.Declaracion) error {
	cp := *d
	f.decls[d.ID] = &cp
	return nil
}
func (f *declaracionRepoFake) GetByID(id string) (*entity.Declaracion, error) {
	return f.decls[id], nil
}
func (f *declaracionRepoFake) GetByPeriodo(clienteID string, ejercicio, mes int, tipo string) (*entity.Declaracion, error) {
	for _, d := range f.decls {
		if d.ClienteID == clienteID && d.Ejercicio == ejercicio && d.Mes == mes && d.Tipo == tipo {
			return d, nil
		}
	}
	return nil, nil
}
func (f *declaracionRepoFake) ListByEjercicio(clienteID string, ejercicio int) ([]*entity.Declaracion, error) {
	var out []*entity.Declaracion
	for _, d := range f.decls {
		if d.ClienteID == clienteID && d.Ejercicio == ejercicio {
			out = append(out, d)
		}
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const clienteID = "cli-1"

// marzoTipico: ingresos gravados 10,000 (ISR retenido 1,000; IVA trasladado
// 1,600) y gastos deducibles de 4,000 (IVA acreditable 640), todo en marzo.
func marzoTipico() *cfdiRepoFake {
	ingreso := &entity.CFDI{
		TipoDeComprobante: entity.TipoIngreso,
		EsIngreso:         true,
		EsDeducible:       true,
		MesDeduccion:      3,
		Fecha:             time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		GravadoISR:        d("10000"),
		ISRRetenido:       d("1000"),
		GravadoIVA:        d("1600"),
		Total:             d("11600"),
	}
	gasto := &entity.CFDI{
		TipoDeComprobante: entity.TipoIngreso,
		EsEgreso:          true,
		EsDeducible:       true,
		MesDeduccion:      3,
		Fecha:             time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
		GravadoISR:        d("4000"),
		GravadoIVA:        d("640"),
		Total:             d("4640"),
	}
	return &cfdiRepoFake{cfdis: []*entity.CFDI{ingreso, gasto}}
}

func nuevoUseCase(cfdis *cfdiRepoFake) (*fiscal.UseCase, *saldoRepoFake, *declaracionRepoFake) {
	saldoRepo := &saldoRepoFake{saldos: map[string]*entity.SaldoFavor{}}
	declRepo := &declaracionRepoFake{decls: map[string]*entity.Declaracion{}}
	return fiscal.NewUseCase(cfdis, saldoRepo, declRepo), saldoRepo, declRepo
}

// ──────────────────────────────────────────────────────────────────────────────
// CalcularDeclaracion
// ──────────────────────────────────────────────────────────────────────────────

func TestCalcularDeclaracion_PagoProvisionalBasico(t *testing.T) {
	uc, _, declRepo := nuevoUseCase(marzoTipico())

	out, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{
		Ejercicio: 2024,
		Mes:       3,
	})
	require.NoError(t, err)

	// utilidad 6,000 * 30% = 1,800; menos 1,000 retenidos = 800 a cargo.
	assert.True(t, out.ISRCausado.Equal(d("1800")), "ISR causado: %s", out.ISRCausado)
	assert.True(t, out.ISRCargo.Equal(d("800")), "ISR a cargo: %s", out.ISRCargo)
	// IVA del mes: 1,600 trasladado - 640 acreditable.
	assert.True(t, out.IVACargo.Equal(d("960")), "IVA a cargo: %s", out.IVACargo)
	assert.Equal(t, entity.DeclaracionBorrador, out.Estado)

	guardada, _ := declRepo.GetByPeriodo(clienteID, 2024, 3, entity.DeclaracionProvisional)
	require.NotNil(t, guardada, "el borrador debe persistirse")
}

func TestCalcularDeclaracion_AcreditaPagosProvisionalesPresentados(t *testing.T) {
	uc, _, declRepo := nuevoUseCase(marzoTipico())

	// Declaración de febrero ya presentada con 100 de ISR pagado.
	declRepo.decls["prev"] = &entity.Declaracion{
		ID:        "prev",
		ClienteID: clienteID,
		Tipo:      entity.DeclaracionProvisional,
		Ejercicio: 2024,
		Mes:       2,
		ISRCargo:  d("100"),
		Estado:    entity.DeclaracionPresentada,
	}

	out, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{
		Ejercicio: 2024,
		Mes:       3,
	})
	require.NoError(t, err)
	assert.True(t, out.PagosProvisionalesPrevios.Equal(d("100")))
	assert.True(t, out.ISRCargo.Equal(d("700")), "1800 - 1000 retenido - 100 pagado")
}

func TestCalcularDeclaracion_AplicaSaldosAFavor(t *testing.T) {
	uc, saldoRepo, _ := nuevoUseCase(marzoTipico())
	saldoRepo.saldos["s1"] = &entity.SaldoFavor{
		ID:                  "s1",
		ClienteID:           clienteID,
		Tipo:                entity.SaldoTipoISR,
		MontoOriginal:       d("500"),
		Activo:              true,
		EjercicioOrigen:     2023,
		MesOrigen:           12,
		EjercicioAplicacion: 2024,
		MesAplicacion:       1,
	}

	out, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{
		Ejercicio:     2024,
		Mes:           3,
		AplicarSaldos: true,
	})
	require.NoError(t, err)

	assert.True(t, out.SaldoAplicadoISR.Equal(d("500")))
	assert.True(t, out.ISRCargo.Equal(d("300")), "800 - 500 de saldo")

	s := saldoRepo.saldos["s1"]
	assert.True(t, s.MontoAplicado.Equal(d("500")), "el consumo debe escribirse en el saldo")
	assert.False(t, s.Activo, "saldo agotado deja de estar activo")
}

func TestCalcularDeclaracion_RegeneraElMismoBorrador(t *testing.T) {
	uc, _, declRepo := nuevoUseCase(marzoTipico())
	req := dto.CalcularDeclaracionRequest{Ejercicio: 2024, Mes: 3}

	primera, err := uc.CalcularDeclaracion(clienteID, req)
	require.NoError(t, err)
	segunda, err := uc.CalcularDeclaracion(clienteID, req)
	require.NoError(t, err)

	assert.Equal(t, primera.ID, segunda.ID, "recalcular el periodo no crea otra declaración")
	assert.Len(t, declRepo.decls, 1)
}

func TestCalcularDeclaracion_PresentadaNoSeRegenera(t *testing.T) {
	uc, _, _ := nuevoUseCase(marzoTipico())
	req := dto.CalcularDeclaracionRequest{Ejercicio: 2024, Mes: 3}

	out, err := uc.CalcularDeclaracion(clienteID, req)
	require.NoError(t, err)
	_, err = uc.Presentar(clienteID, out.ID)
	require.NoError(t, err)

	_, err = uc.CalcularDeclaracion(clienteID, req)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCalcularDeclaracion_PeriodoInvalido(t *testing.T) {
	uc, _, _ := nuevoUseCase(marzoTipico())

	_, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{Ejercicio: 2024, Mes: 13})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{Mes: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Presentar
// ──────────────────────────────────────────────────────────────────────────────

func TestPresentar_MarcaYRechazaDoblePresentacion(t *testing.T) {
	uc, _, _ := nuevoUseCase(marzoTipico())
	out, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{Ejercicio: 2024, Mes: 3})
	require.NoError(t, err)

	presentada, err := uc.Presentar(clienteID, out.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DeclaracionPresentada, presentada.Estado)
	require.NotNil(t, presentada.FechaPresentacion)

	_, err = uc.Presentar(clienteID, out.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestPresentar_DeOtroClienteEsNotFound(t *testing.T) {
	uc, _, _ := nuevoUseCase(marzoTipico())
	out, err := uc.CalcularDeclaracion(clienteID, dto.CalcularDeclaracionRequest{Ejercicio: 2024, Mes: 3})
	require.NoError(t, err)

	_, err = uc.Presentar("otro-cliente", out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
