package entity

import "time"

// Cliente representa un contribuyente administrado por el despacho.
type Cliente struct {
	ID        string
	RFC       string
	Nombre    string
	Email     string
	Regimenes []string // claves de régimen fiscal del SAT (ej: "612", "626")
	Status    string   // active, suspended, inactive

	// Cursor de sincronización SAT: última fecha calendario completamente
	// descargada por dirección (emitidos/recibidos). Evita re-solicitar rangos.
	UltimaSyncEmitidos  *time.Time
	UltimaSyncRecibidos *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Direcciones de sincronización de CFDI ante el SAT.
const (
	DireccionEmitidos  = "emitidos"
	DireccionRecibidos = "recibidos"
)
