package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RequestHandler flujo de solicitudes de salida (protegido).
type RequestHandler struct {
	uc   *requests.UseCase
	slip *requests.SlipUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *requests.UseCase, slip *requests.SlipUseCase) *RequestHandler {
	return &RequestHandler{uc: uc, slip: slip}
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Submitted|Approved|Rejected|InProgress|PartiallyIssued|Issued|Cancelled"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.List(c.UserContext(), ActorFrom(c), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "items": list})
}

// Create godoc
// @Summary      Crear solicitud de salida
// @Description  Queda en Submitted. Sin department_id se usa el del empleado o el primer departamento.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIssueRequest  true  "Líneas y departamento opcional"
// @Success      201   {object}  dto.IssueRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIssueRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), ActorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get godoc
// @Summary      Detalle de solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {object}  dto.IssueRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	out, err := h.uc.Get(c.UserContext(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Items godoc
// @Summary      Líneas de la solicitud
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {array}   dto.RequestItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/items [get]
func (h *RequestHandler) Items(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	items, err := h.uc.Items(c.UserContext(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// Slip godoc
// @Summary      Comprobante de salida en PDF
// @Tags         requests
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/slip [get]
func (h *RequestHandler) Slip(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	pdf, filename, err := h.slip.DownloadSlip(c.UserContext(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true   "ID de la solicitud"
// @Param        body  body  dto.RequestDecision  false  "Comentario opcional"
// @Success      200   {object}  dto.IssueRequestResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.uc.Approve)
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true   "ID de la solicitud"
// @Param        body  body  dto.RequestDecision  false  "Motivo"
// @Success      200   {object}  dto.IssueRequestResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.uc.Reject)
}

// Cancel godoc
// @Summary      Cancelar solicitud
// @Description  Lo ya entregado no vuelve al almacén.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                  true   "ID de la solicitud"
// @Param        body  body  dto.RequestDecision  false  "Motivo"
// @Success      200   {object}  dto.IssueRequestResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/cancel [post]
func (h *RequestHandler) Cancel(c *fiber.Ctx) error {
	return h.decide(c, h.uc.Cancel)
}

// StartIssue godoc
// @Summary      Iniciar entrega
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la solicitud"
// @Success      200  {object}  dto.IssueRequestResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/start-issue [post]
func (h *RequestHandler) StartIssue(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	out, err := h.uc.StartIssue(c.UserContext(), ActorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// IssueItem godoc
// @Summary      Entregar una línea
// @Description  Descuenta stock de la bodega indicada con un movimiento IssueByRequest.
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "ID de la solicitud"
// @Param        body  body  dto.IssueItemRequest  true  "Producto, bodega y cantidad"
// @Success      200   {object}  dto.IssueItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/issue-item [post]
func (h *RequestHandler) IssueItem(c *fiber.Ctx) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	var in dto.IssueItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.IssueItem(c.UserContext(), ActorFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func (h *RequestHandler) decide(
	c *fiber.Ctx,
	op func(ctx context.Context, actor entity.Actor, id int64, in dto.RequestDecision) (*dto.IssueRequestResponse, error),
) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "VALIDATION", "id inválido")
	}
	var in dto.RequestDecision
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badRequest(c, "INVALID_BODY", "cuerpo inválido")
		}
	}
	out, err := op(c.UserContext(), ActorFrom(c), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
