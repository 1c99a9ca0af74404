package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrAccountNotFound    = errors.New("cuenta enterprise no encontrada")
	ErrBranchNotFound     = errors.New("sucursal no encontrada")
	ErrAccountExists      = errors.New("el usuario ya tiene una cuenta enterprise")
	ErrBranchCodeTaken    = errors.New("el código de sucursal ya existe en la organización")
	ErrBranchLimitReached = errors.New("se alcanzó el límite de sucursales del plan")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
)
