package categorias_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontia/kontia-api/internal/application/categorias"
	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain/entity"
)

type categoriaRepoFake struct {
	items []*entity.Categoria
}

func (f *categoriaRepoFake) Create(c *entity.Categoria) error {
	f.items = append(f.items, c)
	return nil
}

func (f *categoriaRepoFake) ListActivas() ([]*entity.Categoria, error) {
	activas := make([]*entity.Categoria, 0, len(f.items))
	for _, c := range f.items {
		if c.Status == "active" {
			activas = append(activas, c)
		}
	}
	return activas, nil
}

func catalogoBase() *categoriaRepoFake {
	return &categoriaRepoFake{items: []*entity.Categoria{
		{ID: "c1", Nombre: "Papelería", Tipo: "gasto", Status: "active"},
		{ID: "c2", Nombre: "Renta de oficina", Tipo: "gasto", Status: "active"},
		{ID: "c3", Nombre: "Equipo de cómputo", Tipo: "inversion", Status: "active"},
	}}
}

// ──────────────────────────────────────────────────────────────────────────────

func TestSugerir_CoincidenciaExactaSinAcentos(t *testing.T) {
	uc := categorias.NewUseCase(catalogoBase())

	sug, err := uc.Sugerir("papeleria")
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, "c1", sug.ID)
}

func TestSugerir_TextoAproximado(t *testing.T) {
	uc := categorias.NewUseCase(catalogoBase())

	sug, err := uc.Sugerir("RENTA OFICINAS CENTRO SA DE CV")
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, "c2", sug.ID)
}

func TestSugerir_CatalogoVacioDevuelveNil(t *testing.T) {
	uc := categorias.NewUseCase(&categoriaRepoFake{})

	sug, err := uc.Sugerir("lo que sea")
	require.NoError(t, err)
	assert.Nil(t, sug)
}

func TestCrear_ReconstruyeElIndice(t *testing.T) {
	repo := catalogoBase()
	uc := categorias.NewUseCase(repo)

	// Primer uso arma el índice sin la nueva categoría.
	_, err := uc.Sugerir("papeleria")
	require.NoError(t, err)

	creada, err := uc.Crear(dto.CrearCategoriaRequest{Nombre: "Gasolina"})
	require.NoError(t, err)

	sug, err := uc.Sugerir("gasolina magna")
	require.NoError(t, err)
	require.NotNil(t, sug)
	assert.Equal(t, creada.ID, sug.ID)
}

func TestCrear_NombreVacioRechazado(t *testing.T) {
	uc := categorias.NewUseCase(&categoriaRepoFake{})

	_, err := uc.Crear(dto.CrearCategoriaRequest{Nombre: "   "})
	assert.Error(t, err)
}
