package http

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type intakeService interface {
	Intake(ctx context.Context, in inventory.IntakeInput) (*inventory.IntakeResult, error)
}

type lifecycleService interface {
	GetPurchase(ctx context.Context, id string) (*entity.PurchaseRecord, error)
	Deactivate(ctx context.Context, id string) (*entity.PurchaseRecord, error)
	Reactivate(ctx context.Context, id string) (*entity.PurchaseRecord, error)
	VerifyPurchase(ctx context.Context, id string) (*inventory.PurchaseAudit, error)
}

// PurchaseHandler maneja ingresos y ciclo de vida de compras (protegido).
type PurchaseHandler struct {
	intake    intakeService
	lifecycle lifecycleService
	validate  *validator.Validate
	log       *logger.Logger
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(intake intakeService, lifecycle lifecycleService, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{intake: intake, lifecycle: lifecycle, validate: newValidator(), log: log}
}

// Intake godoc
// @Summary      Registrar ingreso de compra
// @Description  Crea la compra o la fusiona con la compra activa de la misma bodega e ítem.
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IntakeRequest  true  "bodega, ítem, proveedor, cantidad, precio unitario"
// @Success      201   {object}  dto.IntakeResponse  "compra creada"
// @Success      200   {object}  dto.IntakeResponse  "compra fusionada"
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Intake(c *fiber.Ctx) error {
	var in dto.IntakeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return respondValidation(c, err)
	}
	var entryDate entity.Date
	if in.EntryDate != "" {
		d, err := entity.ParseDate(in.EntryDate)
		if err != nil {
			return respondError(c, h.log, fmt.Errorf("%w: %v", domain.ErrValidation, err), nil)
		}
		entryDate = d
	}
	res, err := h.intake.Intake(c.UserContext(), inventory.IntakeInput{
		WarehouseID:  in.WarehouseID,
		Item:         entity.ItemRef{Kind: entity.ItemKind(in.ItemKind), ID: in.ItemID},
		SupplierID:   in.SupplierID,
		Quantity:     in.Quantity,
		UnitPrice:    in.UnitPrice,
		EntryDate:    entryDate,
		Observations: in.Observations,
	})
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	status := fiber.StatusOK
	if res.Action == inventory.ActionCreated {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(dto.IntakeResponse{
		Action:   string(res.Action),
		Purchase: toPurchaseResponse(res.Purchase),
		Movement: toMovementResponse(res.Entry),
		Stock:    res.Stock,
	})
}

// GetByID godoc
// @Summary      Obtener compra por ID
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.lifecycle.GetPurchase(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Deactivate godoc
// @Summary      Desactivar compra
// @Description  Escribe una salida compensatoria por la cantidad de la compra.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/deactivate [post]
func (h *PurchaseHandler) Deactivate(c *fiber.Ctx) error {
	p, err := h.lifecycle.Deactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Reactivate godoc
// @Summary      Reactivar compra
// @Description  Escribe una entrada compensatoria; falla si ya hay otra compra activa para la clave.
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id}/reactivate [post]
func (h *PurchaseHandler) Reactivate(c *fiber.Ctx) error {
	p, err := h.lifecycle.Reactivate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(toPurchaseResponse(p))
}

// Verify godoc
// @Summary      Auditar movimientos de una compra
// @Tags         purchases
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la compra"
// @Success      200  {object}  dto.PurchaseAuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse  "LEDGER_CORRUPTION"
// @Router       /api/purchases/{id}/verify [get]
func (h *PurchaseHandler) Verify(c *fiber.Ctx) error {
	audit, err := h.lifecycle.VerifyPurchase(c.UserContext(), c.Params("id"))
	if err != nil {
		if audit != nil && errors.Is(err, domain.ErrLedgerCorruption) {
			return respondError(c, h.log, err, map[string]string{
				"purchase_id": audit.Purchase.ID,
				"linked_sum":  audit.LinkedSum.String(),
				"quantity":    audit.Purchase.Contribution().String(),
			})
		}
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(dto.PurchaseAuditResponse{
		Purchase:   toPurchaseResponse(audit.Purchase),
		Movements:  toMovementResponses(audit.Entries),
		LinkedSum:  audit.LinkedSum,
		Consistent: true,
	})
}
