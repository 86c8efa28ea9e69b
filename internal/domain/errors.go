package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrAccountNotFound     = errors.New("cuenta no encontrada")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrInsufficientCredits = errors.New("créditos insuficientes")
	ErrInsufficientSupply  = errors.New("no hay suficientes leads disponibles")
	ErrTransient           = errors.New("fallo transitorio de almacenamiento, reintentar")
	ErrSourceUnavailable   = errors.New("origen de hojas de cálculo no disponible")
)

// InsufficientCreditsError indica que la cuenta no cubre la cantidad pedida.
// errors.Is(err, ErrInsufficientCredits) es true.
type InsufficientCreditsError struct {
	Requested int
	Balance   int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("créditos insuficientes: solicitados %d, saldo %d", e.Requested, e.Balance)
}

func (e *InsufficientCreditsError) Unwrap() error { return ErrInsufficientCredits }

// InsufficientSupplyError indica que, incluso tras reponer, hay menos leads libres que los pedidos.
// errors.Is(err, ErrInsufficientSupply) es true.
type InsufficientSupplyError struct {
	Requested int
	Available int
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("leads insuficientes: solicitados %d, disponibles %d", e.Requested, e.Available)
}

func (e *InsufficientSupplyError) Unwrap() error { return ErrInsufficientSupply }
