package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

// MovementHandler historial del libro (protegido, solo lectura).
type MovementHandler struct {
	query *inventory.QueryUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(query *inventory.QueryUseCase) *MovementHandler {
	return &MovementHandler{query: query}
}

// List godoc
// @Summary      Historial de movimientos
// @Description  Más recientes primero, máximo 500 filas.
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  int     false  "Producto"
// @Param        warehouse_id  query  int     false  "Bodega"
// @Param        type          query  string  false  "Receipt|WriteOff|IssueByRequest|TransferIn|TransferOut|Adjustment"
// @Param        from          query  string  false  "RFC3339 o YYYY-MM-DD"
// @Param        to            query  string  false  "RFC3339 o YYYY-MM-DD (día completo)"
// @Param        request_id    query  int     false  "Solicitud"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var q dto.MovementQuery
	var ok bool
	if q.ProductID, ok = queryInt64(c, "product_id"); !ok {
		return badRequest(c, "VALIDATION", "product_id inválido")
	}
	if q.WarehouseID, ok = queryInt64(c, "warehouse_id"); !ok {
		return badRequest(c, "VALIDATION", "warehouse_id inválido")
	}
	if q.RequestID, ok = queryInt64(c, "request_id"); !ok {
		return badRequest(c, "VALIDATION", "request_id inválido")
	}
	if q.From, ok = queryTime(c, "from", false); !ok {
		return badRequest(c, "VALIDATION", "from inválido")
	}
	if q.To, ok = queryTime(c, "to", true); !ok {
		return badRequest(c, "VALIDATION", "to inválido")
	}
	q.Type = c.Query("type")

	list, err := h.query.ListMovements(c.UserContext(), ActorFrom(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}
