package dto

// CrearCategoriaRequest alta de categoría de gasto.
type CrearCategoriaRequest struct {
	Nombre string `json:"nombre" validate:"required"`
	Tipo   string `json:"tipo" validate:"omitempty,oneof=gasto inversion nomina"`
}

// CategoriaResponse categoría del catálogo.
type CategoriaResponse struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Tipo   string `json:"tipo"`
}

// SugerirCategoriaRequest texto libre a clasificar.
type SugerirCategoriaRequest struct {
	Texto string `json:"texto" validate:"required"`
}
