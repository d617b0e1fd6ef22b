package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los devuelven tal cual o envueltos con %w; la capa HTTP los traduce con errors.Is.
var (
	ErrNotFound               = errors.New("recurso no encontrado")
	ErrInvalidInput           = errors.New("entrada inválida")
	ErrInvalidQuantity        = errors.New("la cantidad debe ser mayor que cero")
	ErrInsufficientStock      = errors.New("stock insuficiente")
	ErrDepartmentRequired     = errors.New("no se pudo determinar el departamento de la solicitud")
	ErrEmptyItems             = errors.New("la solicitud debe tener al menos un ítem")
	ErrDuplicateItem          = errors.New("producto repetido en la solicitud")
	ErrItemNotInRequest       = errors.New("el producto no pertenece a la solicitud")
	ErrOverIssue              = errors.New("la cantidad excede lo pendiente por entregar")
	ErrInvalidStateTransition = errors.New("transición de estado no permitida")
	ErrUnauthorized           = errors.New("no autorizado")
	ErrConflict               = errors.New("conflicto con el estado actual")
)
