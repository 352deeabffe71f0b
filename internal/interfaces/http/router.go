package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine         *inventory.Engine
	JWTSecret      string
	JWTIssuer      string         // vacío = no se valida el emisor
	Location       *time.Location // zona para from/to en formato fecha
	RequestTimeout time.Duration  // 0 = sin límite propio
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api",
		AuthMiddleware(deps.JWTSecret, deps.JWTIssuer),
		AccessLog(log.Component("http.access")),
		RequestTimeout(deps.RequestTimeout),
	)
	writers := RequireRole(RoleAdmin, RoleBodeguero)
	admin := RequireRole(RoleAdmin)

	// Compras
	purchases := api.Group("/purchases")
	purchaseHandler := NewPurchaseHandler(deps.Engine.Intake, deps.Engine.Lifecycle, log.Component("http.purchases"))
	purchases.Post("/", writers, purchaseHandler.Intake)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Post("/:id/deactivate", writers, purchaseHandler.Deactivate)
	purchases.Post("/:id/reactivate", writers, purchaseHandler.Reactivate)
	purchases.Get("/:id/verify", admin, purchaseHandler.Verify)

	// Stock por clave (bodega, tipo, ítem)
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Engine.Stock, deps.Engine.Ledger, deps.Engine.Movements, deps.Location, log.Component("http.stock"))
	stock.Post("/rebuild", admin, stockHandler.RebuildAll)
	byKey := stock.Group("/:warehouse_id/:kind/:item_id")
	byKey.Get("/", stockHandler.Get)
	byKey.Get("/movements", stockHandler.ListMovements)
	byKey.Post("/movements", writers, stockHandler.RecordMovement)
	byKey.Get("/kardex", stockHandler.Kardex)
	byKey.Get("/kardex.pdf", stockHandler.KardexPDF)
	byKey.Post("/rebuild", admin, stockHandler.Rebuild)
	byKey.Post("/repair", admin, stockHandler.Repair)
}

// RequestTimeout acota el contexto de la petición; la transacción en curso se revierte al vencer.
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d <= 0 {
			return c.Next()
		}
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AccessLog registra cada petición autenticada con su actor. Va después de AuthMiddleware.
func AccessLog(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		ev := log.Info()
		if err != nil {
			ev = log.Warn().Err(err)
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Int64("latency_ms", time.Since(start).Milliseconds()).
			Str("user_id", GetUserID(c)).
			Str("role", GetRole(c)).
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Msg("http request")
		return err
	}
}
