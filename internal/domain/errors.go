package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrCFDIBloqueado      = errors.New("el cfdi está bloqueado para edición")
	ErrSaldoInsuficiente  = errors.New("saldo a favor insuficiente")
	ErrSolicitudEnCurso   = errors.New("ya existe una solicitud de descarga en curso")
)
