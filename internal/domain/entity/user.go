package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin    = "admin"
	RoleContador = "contador"
	RoleCliente  = "cliente"
)

// User representa un usuario del sistema (despacho o contribuyente).
type User struct {
	ID           string
	ClienteID    string // vacío para admin/contador de despacho
	Email        string
	PasswordHash string
	Name         string
	Role         string // ver constantes Role*
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
