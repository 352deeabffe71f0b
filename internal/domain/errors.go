package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Se envuelven con fmt.Errorf("%w: detalle", ...) y se comparan con errors.Is.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Catálogo: bodega o ítem inexistente/deshabilitado.
	ErrInvalidReference  = errors.New("referencia de catálogo inválida")
	ErrInactiveWarehouse = errors.New("la bodega está deshabilitada")

	// Ciclo de vida de compras.
	ErrAlreadyActive   = errors.New("la compra ya está activa")
	ErrAlreadyInactive = errors.New("la compra ya está inactiva")
	ErrActiveDuplicate = errors.New("ya existe una compra activa para la bodega e ítem")

	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrConcurrencyConflict el intento perdió la carrera por la clave; el llamador puede reintentar.
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia")
	// ErrLedgerCorruption el agregado no coincide con el libro de movimientos. Nunca se reintenta.
	ErrLedgerCorruption = errors.New("el stock materializado no coincide con el libro de movimientos")
)
