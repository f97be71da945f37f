package entity

import "time"

// Categoria clasifica gastos deducibles (ej: "Papelería", "Renta de oficina").
type Categoria struct {
	ID        string
	Nombre    string
	Tipo      string // gasto, inversion, nomina
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
