// Package categorias: catálogo de categorías de gasto y sugerencia difusa a
// partir de la descripción del comprobante.
package categorias

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
	"github.com/schollz/closestmatch"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kontia/kontia-api/internal/application/dto"
	"github.com/kontia/kontia-api/internal/domain"
	"github.com/kontia/kontia-api/internal/domain/entity"
	"github.com/kontia/kontia-api/internal/domain/repository"
)

var nonAlphanumericRegex = regexp.MustCompile(`[^A-Z0-9 ]+`)
var whitespaceRegex = regexp.MustCompile(`\s+`)

// UseCase administra el catálogo y sugiere la categoría más cercana a un texto
// libre (nombre del emisor o concepto del CFDI).
type UseCase struct {
	categoriaRepo repository.CategoriaRepository

	mu      sync.Mutex
	cm      *closestmatch.ClosestMatch
	indice  map[string]*entity.Categoria // clave normalizada -> categoría
	cargado bool
}

// NewUseCase construye el caso de uso.
func NewUseCase(categoriaRepo repository.CategoriaRepository) *UseCase {
	return &UseCase{categoriaRepo: categoriaRepo}
}

// Crear agrega una categoría al catálogo.
func (uc *UseCase) Crear(in dto.CrearCategoriaRequest) (*dto.CategoriaResponse, error) {
	nombre := strings.TrimSpace(in.Nombre)
	if nombre == "" {
		return nil, domain.ErrInvalidInput
	}
	tipo := in.Tipo
	if tipo == "" {
		tipo = "gasto"
	}
	cat := &entity.Categoria{
		ID:     uuid.New().String(),
		Nombre: nombre,
		Tipo:   tipo,
		Status: "active",
	}
	if err := uc.categoriaRepo.Create(cat); err != nil {
		return nil, err
	}
	uc.invalidar()
	return categoriaResponse(cat), nil
}

// List devuelve las categorías activas.
func (uc *UseCase) List() ([]dto.CategoriaResponse, error) {
	cats, err := uc.categoriaRepo.ListActivas()
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoriaResponse, 0, len(cats))
	for _, c := range cats {
		out = append(out, *categoriaResponse(c))
	}
	return out, nil
}

// Sugerir devuelve la categoría activa cuyo nombre queda más cerca del texto
// dado. Si el catálogo está vacío o no hay coincidencia, devuelve nil sin
// error; la sugerencia nunca es obligatoria.
func (uc *UseCase) Sugerir(texto string) (*dto.CategoriaResponse, error) {
	if err := uc.cargar(); err != nil {
		return nil, err
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.cm == nil {
		return nil, nil
	}
	match := uc.cm.Closest(normalizarTexto(texto))
	if match == "" {
		return nil, nil
	}
	cat, ok := uc.indice[match]
	if !ok {
		return nil, nil
	}
	return categoriaResponse(cat), nil
}

// cargar arma el índice difuso la primera vez que se necesita. El índice se
// reconstruye tras cada alta de categoría.
func (uc *UseCase) cargar() error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.cargado {
		return nil
	}
	cats, err := uc.categoriaRepo.ListActivas()
	if err != nil {
		return err
	}
	uc.indice = make(map[string]*entity.Categoria, len(cats))
	claves := make([]string, 0, len(cats))
	for _, c := range cats {
		clave := normalizarTexto(c.Nombre)
		if clave == "" {
			continue
		}
		uc.indice[clave] = c
		claves = append(claves, clave)
	}
	if len(claves) > 0 {
		uc.cm = closestmatch.New(claves, []int{3, 4})
	} else {
		uc.cm = nil
	}
	uc.cargado = true
	return nil
}

func (uc *UseCase) invalidar() {
	uc.mu.Lock()
	uc.cargado = false
	uc.cm = nil
	uc.mu.Unlock()
}

// normalizarTexto quita acentos, colapsa espacios y deja solo A-Z0-9 en
// mayúsculas, para que "Papelería" y "PAPELERIA" indexen igual.
func normalizarTexto(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, str)
	result = strings.ToUpper(result)
	result = nonAlphanumericRegex.ReplaceAllString(result, " ")
	result = whitespaceRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

func categoriaResponse(c *entity.Categoria) *dto.CategoriaResponse {
	return &dto.CategoriaResponse{ID: c.ID, Nombre: c.Nombre, Tipo: c.Tipo}
}
