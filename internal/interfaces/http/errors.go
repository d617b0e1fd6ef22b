package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Orden relevante: se usa el primer error que coincida con errors.Is.
var errorTable = []errorMapping{
	{domain.ErrInvalidQuantity, fiber.StatusBadRequest, "INVALID_QUANTITY", "la cantidad debe ser mayor que cero"},
	{domain.ErrEmptyItems, fiber.StatusBadRequest, "EMPTY_ITEMS", "la solicitud debe tener al menos una línea"},
	{domain.ErrDuplicateItem, fiber.StatusBadRequest, "DUPLICATE_ITEM", "producto repetido en la solicitud"},
	{domain.ErrItemNotInRequest, fiber.StatusBadRequest, "ITEM_NOT_IN_REQUEST", "el producto no pertenece a la solicitud"},
	{domain.ErrDepartmentRequired, fiber.StatusBadRequest, "DEPARTMENT_REQUIRED", "no se pudo determinar el departamento"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION", "datos inválidos"},
	{domain.ErrUnauthorized, fiber.StatusForbidden, "FORBIDDEN", "permiso insuficiente"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente"},
	{domain.ErrOverIssue, fiber.StatusConflict, "OVER_ISSUE", "la entrega supera lo pendiente de la línea"},
	{domain.ErrInvalidStateTransition, fiber.StatusConflict, "INVALID_STATE_TRANSITION", "operación no permitida en el estado actual"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicto de concurrencia, reintente"},
}

// respondError traduce errores de dominio a HTTP. Lo no mapeado es 500 y se registra.
func respondError(c *fiber.Ctx, err error) error {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

func badRequest(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: message})
}
