package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/requests"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *inventory.LedgerUseCase
	Query     *inventory.QueryUseCase
	Requests  *requests.UseCase
	Slip      *requests.SlipUseCase
	JWTSecret string
	Limiter   *limiter.Limiter // nil = sin límite
	Log       zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Público
	api.Get("/warehouse/ping", Ping)

	// Rutas protegidas (requieren Bearer Token)
	handlers := []fiber.Handler{AuthMiddleware(deps.JWTSecret)}
	if deps.Limiter != nil {
		handlers = append(handlers, RateLimit(deps.Limiter, deps.Log))
	}
	protected := api.Group("/", handlers...)

	// Libro de existencias
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Query)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Get("/balances/:warehouseId/:productId", inventoryHandler.GetBalance)
	inv.Post("/receipt", inventoryHandler.Receipt)
	inv.Post("/writeoff", inventoryHandler.WriteOff)
	inv.Post("/adjustment", inventoryHandler.Adjustment)
	inv.Post("/transfer", inventoryHandler.Transfer)

	movementHandler := NewMovementHandler(deps.Query)
	protected.Get("/movements", movementHandler.List)

	// Solicitudes de salida
	reqs := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.Requests, deps.Slip)
	reqs.Get("/", requestHandler.List)
	reqs.Post("/", requestHandler.Create)
	reqs.Get("/:id", requestHandler.Get)
	reqs.Get("/:id/items", requestHandler.Items)
	reqs.Get("/:id/slip", requestHandler.Slip)
	reqs.Post("/:id/approve", requestHandler.Approve)
	reqs.Post("/:id/reject", requestHandler.Reject)
	reqs.Post("/:id/start-issue", requestHandler.StartIssue)
	reqs.Post("/:id/issue-item", requestHandler.IssueItem)
	reqs.Post("/:id/cancel", requestHandler.Cancel)
}
