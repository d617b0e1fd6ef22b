package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// InventoryHandler saldos y operaciones directas del libro de existencias (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	query  *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, query *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, query: query}
}

// ListBalances godoc
// @Summary      Listar saldos
// @Description  Saldos por bodega y producto ordenados por nombre de producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  int     false  "Filtrar por bodega"
// @Param        search        query  string  false  "Subcadena de SKU o nombre"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	warehouseID, ok := queryInt64(c, "warehouse_id")
	if !ok {
		return badRequest(c, "VALIDATION", "warehouse_id inválido")
	}
	list, err := h.query.ListBalances(c.UserContext(), ActorFrom(c), warehouseID, c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// GetBalance godoc
// @Summary      Saldo de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouseId  path  int  true  "ID de la bodega"
// @Param        productId    path  int  true  "ID del producto"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances/{warehouseId}/{productId} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	warehouseID, ok1 := pathID(c, "warehouseId")
	productID, ok2 := pathID(c, "productId")
	if !ok1 || !ok2 {
		return badRequest(c, "VALIDATION", "ids inválidos")
	}
	out, err := h.query.GetBalance(c.UserContext(), ActorFrom(c), warehouseID, productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Receipt godoc
// @Summary      Registrar entrada
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "quantity > 0"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/receipt [post]
func (h *InventoryHandler) Receipt(c *fiber.Ctx) error {
	return h.stockOperation(c, h.ledger.Receipt)
}

// WriteOff godoc
// @Summary      Registrar baja
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "quantity > 0 (se registra negativa)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/writeoff [post]
func (h *InventoryHandler) WriteOff(c *fiber.Ctx) error {
	return h.stockOperation(c, h.ledger.WriteOff)
}

// Adjustment godoc
// @Summary      Ajuste de inventario (Admin)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOperationRequest  true  "quantity con signo, distinta de cero"
// @Success      201   {object}  dto.MovementResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustment [post]
func (h *InventoryHandler) Adjustment(c *fiber.Ctx) error {
	return h.stockOperation(c, h.ledger.Adjustment)
}

// Transfer godoc
// @Summary      Traslado entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino, producto y cantidad"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.ledger.Transfer(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *InventoryHandler) stockOperation(
	c *fiber.Ctx,
	op func(ctx context.Context, actor entity.Actor, in dto.StockOperationRequest) (*dto.MovementResponse, error),
) error {
	var in dto.StockOperationRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := op(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
