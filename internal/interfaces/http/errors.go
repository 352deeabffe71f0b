package http

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorTable orden de evaluación con errors.Is; el primero que coincide gana.
var errorTable = []errorMapping{
	{domain.ErrValidation, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidReference, fiber.StatusUnprocessableEntity, "INVALID_REFERENCE"},
	{domain.ErrInactiveWarehouse, fiber.StatusUnprocessableEntity, "INACTIVE_WAREHOUSE"},
	{domain.ErrInsufficientStock, fiber.StatusUnprocessableEntity, "INSUFFICIENT_STOCK"},
	{domain.ErrAlreadyActive, fiber.StatusConflict, "ALREADY_ACTIVE"},
	{domain.ErrAlreadyInactive, fiber.StatusConflict, "ALREADY_INACTIVE"},
	{domain.ErrActiveDuplicate, fiber.StatusConflict, "ACTIVE_DUPLICATE"},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONCURRENCY_CONFLICT"},
	{domain.ErrLedgerCorruption, fiber.StatusInternalServerError, "LEDGER_CORRUPTION"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{inventory.ErrNoRenderer, fiber.StatusNotImplemented, "PDF_UNAVAILABLE"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// respondError traduce un error del motor a dto.ErrorResponse.
// Los errores no clasificados se registran y se responden como INTERNAL sin detalle.
func respondError(c *fiber.Ctx, log *logger.Logger, err error, details map[string]string) error {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				log.Error().Err(err).Str("path", c.Path()).Str("code", m.code).Msg("error en la petición")
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: err.Error(), Details: details})
		}
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
}

// respondValidation responde 400 con el detalle campo → regla del validador.
func respondValidation(c *fiber.Ctx, err error) error {
	details := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
