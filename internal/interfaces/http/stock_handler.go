package http

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

type stockService interface {
	CurrentStock(ctx context.Context, key entity.StockKey) (decimal.Decimal, error)
	Rebuild(ctx context.Context, key entity.StockKey) (*inventory.RebuildReport, error)
	Repair(ctx context.Context, key entity.StockKey) (*inventory.RebuildReport, error)
	RebuildAll(ctx context.Context) ([]*inventory.RebuildReport, error)
}

type ledgerService interface {
	ListForKey(ctx context.Context, key entity.StockKey, filter entity.LedgerFilter) (*inventory.LedgerPage, error)
	Kardex(ctx context.Context, key entity.StockKey, from, to *time.Time) (*inventory.Kardex, error)
	KardexPDF(ctx context.Context, key entity.StockKey, from, to *time.Time) ([]byte, error)
}

type movementService interface {
	RecordMovement(ctx context.Context, in inventory.MovementInput) (*inventory.MovementResult, error)
}

// StockHandler stock actual, libro, kardex y reconstrucción por clave (protegido).
type StockHandler struct {
	stock     stockService
	ledger    ledgerService
	movements movementService
	validate  *validator.Validate
	loc       *time.Location
	log       *logger.Logger
}

// NewStockHandler construye el handler. loc interpreta los parámetros from/to en formato fecha.
func NewStockHandler(stock stockService, ledger ledgerService, movements movementService, loc *time.Location, log *logger.Logger) *StockHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &StockHandler{stock: stock, ledger: ledger, movements: movements, validate: newValidator(), loc: loc, log: log}
}

// Get godoc
// @Summary      Stock actual de una bodega e ítem
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        kind          path  string  true  "product | resource"
// @Param        item_id       path  string  true  "ID del ítem"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id} [get]
func (h *StockHandler) Get(c *fiber.Ctx) error {
	key, err := keyFromParams(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	q, err := h.stock.CurrentStock(c.UserContext(), key)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(dto.StockResponse{
		WarehouseID: key.WarehouseID,
		ItemKind:    string(key.Item.Kind),
		ItemID:      key.Item.ID,
		Quantity:    q,
	})
}

// ListMovements godoc
// @Summary      Libro de movimientos de la clave
// @Description  Orden de inserción; paginado por cursor (after = último seq visto).
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        kind          path   string  true   "product | resource"
// @Param        item_id       path   string  true   "ID del ítem"
// @Param        from          query  string  false  "RFC3339 o YYYY-MM-DD, inclusivo"
// @Param        to            query  string  false  "RFC3339 o YYYY-MM-DD, exclusivo"
// @Param        after         query  int     false  "cursor"
// @Param        limit         query  int     false  "tamaño de página (máx. 500)"
// @Success      200  {object}  dto.LedgerPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	key, err := keyFromParams(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	var q dto.LedgerQuery
	if err := c.QueryParser(&q); err != nil {
		return respondError(c, h.log, fmt.Errorf("%w: parámetros de consulta", domain.ErrValidation), nil)
	}
	if err := h.validate.Struct(q); err != nil {
		return respondValidation(c, err)
	}
	from, to, err := h.parseRange(q.From, q.To)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	page, err := h.ledger.ListForKey(c.UserContext(), key, entity.LedgerFilter{From: from, To: to, After: q.After, Limit: q.Limit})
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(dto.LedgerPageResponse{
		Items: toMovementResponses(page.Entries),
		Page:  dto.PageResponse{Limit: page.Limit, NextAfter: page.NextAfter, HasMore: page.HasMore},
	})
}

// RecordMovement godoc
// @Summary      Registrar movimiento manual
// @Description  Ajuste o consumo sin compra asociada. Una salida mayor al stock responde 422.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        warehouse_id  path  string               true  "ID de la bodega"
// @Param        kind          path  string               true  "product | resource"
// @Param        item_id       path  string               true  "ID del ítem"
// @Param        body          body  dto.MovementRequest  true  "dirección, cantidad, observaciones"
// @Success      201  {object}  dto.RecordMovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/movements [post]
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	key, err := keyFromParams(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := h.validate.Struct(in); err != nil {
		return respondValidation(c, err)
	}
	res, err := h.movements.RecordMovement(c.UserContext(), inventory.MovementInput{
		WarehouseID:  key.WarehouseID,
		Item:         key.Item,
		Direction:    entity.Direction(in.Direction),
		Quantity:     in.Quantity,
		Observations: in.Observations,
	})
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.RecordMovementResponse{
		Movement: toMovementResponse(res.Entry),
		Stock:    res.Stock,
	})
}

// Kardex godoc
// @Summary      Kardex de la clave
// @Description  Saldo inicial antes de from, movimientos con saldo corrido y totales.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        kind          path   string  true   "product | resource"
// @Param        item_id       path   string  true   "ID del ítem"
// @Param        from          query  string  false  "RFC3339 o YYYY-MM-DD, inclusivo"
// @Param        to            query  string  false  "RFC3339 o YYYY-MM-DD, exclusivo"
// @Success      200  {object}  dto.KardexResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/kardex [get]
func (h *StockHandler) Kardex(c *fiber.Ctx) error {
	key, from, to, err := h.kardexArgs(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	k, err := h.ledger.Kardex(c.UserContext(), key, from, to)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(toKardexResponse(k))
}

// KardexPDF godoc
// @Summary      Kardex de la clave en PDF
// @Tags         stock
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  path   string  true   "ID de la bodega"
// @Param        kind          path   string  true   "product | resource"
// @Param        item_id       path   string  true   "ID del ítem"
// @Param        from          query  string  false  "RFC3339 o YYYY-MM-DD, inclusivo"
// @Param        to            query  string  false  "RFC3339 o YYYY-MM-DD, exclusivo"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      501  {object}  dto.ErrorResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/kardex.pdf [get]
func (h *StockHandler) KardexPDF(c *fiber.Ctx) error {
	key, from, to, err := h.kardexArgs(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	pdf, err := h.ledger.KardexPDF(c.UserContext(), key, from, to)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="kardex-%s-%s.pdf"`, key.WarehouseID, key.Item.ID))
	return c.Send(pdf)
}

// Rebuild godoc
// @Summary      Reconstruir el stock de la clave desde el libro
// @Description  Si no coincide, la clave queda detenida hasta repair y responde LEDGER_CORRUPTION.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        kind          path  string  true  "product | resource"
// @Param        item_id       path  string  true  "ID del ítem"
// @Success      200  {object}  dto.RebuildReportResponse
// @Failure      500  {object}  dto.ErrorResponse  "LEDGER_CORRUPTION"
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/rebuild [post]
func (h *StockHandler) Rebuild(c *fiber.Ctx) error {
	key, err := keyFromParams(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	report, err := h.stock.Rebuild(c.UserContext(), key)
	if err != nil {
		var details map[string]string
		if report != nil {
			details = map[string]string{
				"stored":     report.Stored.String(),
				"derived":    report.Derived.String(),
				"was_halted": fmt.Sprint(report.WasHalted),
			}
		}
		return respondError(c, h.log, err, details)
	}
	return c.JSON(toRebuildResponse(report))
}

// Repair godoc
// @Summary      Reparar la clave
// @Description  Sobrescribe el stock con la suma del libro y levanta la detención.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  path  string  true  "ID de la bodega"
// @Param        kind          path  string  true  "product | resource"
// @Param        item_id       path  string  true  "ID del ítem"
// @Success      200  {object}  dto.RebuildReportResponse
// @Router       /api/stock/{warehouse_id}/{kind}/{item_id}/repair [post]
func (h *StockHandler) Repair(c *fiber.Ctx) error {
	key, err := keyFromParams(c)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	report, err := h.stock.Repair(c.UserContext(), key)
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	return c.JSON(toRebuildResponse(report))
}

// RebuildAll godoc
// @Summary      Reconstruir todas las claves
// @Description  Las claves inconsistentes aparecen con consistent=false; la pasada no se detiene.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.RebuildReportResponse
// @Router       /api/stock/rebuild [post]
func (h *StockHandler) RebuildAll(c *fiber.Ctx) error {
	reports, err := h.stock.RebuildAll(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, nil)
	}
	out := make([]dto.RebuildReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, toRebuildResponse(r))
	}
	return c.JSON(out)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func keyFromParams(c *fiber.Ctx) (entity.StockKey, error) {
	key := entity.StockKey{
		WarehouseID: c.Params("warehouse_id"),
		Item:        entity.ItemRef{Kind: entity.ItemKind(c.Params("kind")), ID: c.Params("item_id")},
	}
	if err := key.Validate(); err != nil {
		return entity.StockKey{}, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return key, nil
}

func (h *StockHandler) kardexArgs(c *fiber.Ctx) (entity.StockKey, *time.Time, *time.Time, error) {
	key, err := keyFromParams(c)
	if err != nil {
		return entity.StockKey{}, nil, nil, err
	}
	from, to, err := h.parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		return entity.StockKey{}, nil, nil, err
	}
	return key, from, to, nil
}

func (h *StockHandler) parseRange(fromS, toS string) (*time.Time, *time.Time, error) {
	from, err := h.parseInstant(fromS)
	if err != nil {
		return nil, nil, err
	}
	to, err := h.parseInstant(toS)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// parseInstant acepta RFC3339 o YYYY-MM-DD (medianoche en la zona configurada).
func (h *StockHandler) parseInstant(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, h.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q, use RFC3339 o YYYY-MM-DD", domain.ErrValidation, s)
	}
	return &t, nil
}
