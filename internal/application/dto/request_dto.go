package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// CreateRequestItem línea del body de creación.
type CreateRequestItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateIssueRequest body para POST /api/requests.
// DepartmentID es opcional: si falta se usa el del empleado o el primer departamento.
type CreateIssueRequest struct {
	DepartmentID *int64              `json:"department_id,omitempty"`
	Comment      *string             `json:"comment,omitempty"`
	Items        []CreateRequestItem `json:"items"`
}

// RequestDecision body opcional para approve, reject y cancel.
type RequestDecision struct {
	Comment *string `json:"comment,omitempty"`
}

// IssueItemRequest body para POST /api/requests/:id/issue-item.
type IssueItemRequest struct {
	ProductID   int64           `json:"product_id"`
	WarehouseID int64           `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Comment     *string         `json:"comment,omitempty"`
}

// RequestItemResponse salida de una línea.
type RequestItemResponse struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	RequestedQty decimal.Decimal `json:"requested_qty"`
	IssuedQty    decimal.Decimal `json:"issued_qty"`
	RemainingQty decimal.Decimal `json:"remaining_qty"`
}

// IssueRequestResponse salida de una solicitud (Items solo en el detalle).
type IssueRequestResponse struct {
	ID           int64                 `json:"id"`
	RequesterID  string                `json:"requester_id"`
	DepartmentID int64                 `json:"department_id"`
	Status       string                `json:"status"`
	CreatedAt    time.Time             `json:"created_at"`
	ApprovedAt   *time.Time            `json:"approved_at,omitempty"`
	ApprovedByID *string               `json:"approved_by_id,omitempty"`
	Comment      *string               `json:"comment,omitempty"`
	Items        []RequestItemResponse `json:"items,omitempty"`
}

// IssueItemResponse resultado de una entrega parcial o total.
type IssueItemResponse struct {
	Request  IssueRequestResponse `json:"request"`
	Movement MovementResponse     `json:"movement"`
}

// NewIssueRequestResponse mapea la solicitud y, si vienen, sus líneas.
func NewIssueRequestResponse(r *entity.IssueRequest, items []*entity.IssueRequestItem) IssueRequestResponse {
	out := IssueRequestResponse{
		ID:           r.ID,
		RequesterID:  r.RequesterID,
		DepartmentID: r.DepartmentID,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt,
		ApprovedAt:   r.ApprovedAt,
		ApprovedByID: r.ApprovedByID,
		Comment:      r.Comment,
	}
	if items != nil {
		out.Items = NewRequestItemResponses(items)
	}
	return out
}

// NewRequestItemResponses mapea las líneas conservando su orden.
func NewRequestItemResponses(items []*entity.IssueRequestItem) []RequestItemResponse {
	out := make([]RequestItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, RequestItemResponse{
			ID:           it.ID,
			ProductID:    it.ProductID,
			RequestedQty: it.RequestedQty,
			IssuedQty:    it.IssuedQty,
			RemainingQty: it.Remaining(),
		})
	}
	return out
}
