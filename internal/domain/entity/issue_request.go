package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus estado del ciclo de vida de una solicitud de salida de almacén.
type RequestStatus string

const (
	// RequestDraft existe en el modelo persistido pero ninguna operación lo produce.
	RequestDraft           RequestStatus = "Draft"
	RequestSubmitted       RequestStatus = "Submitted"
	RequestApproved        RequestStatus = "Approved"
	RequestRejected        RequestStatus = "Rejected"
	RequestInProgress      RequestStatus = "InProgress"
	RequestPartiallyIssued RequestStatus = "PartiallyIssued"
	RequestIssued          RequestStatus = "Issued"
	RequestCancelled       RequestStatus = "Cancelled"
)

// AllRequestStatuses lista los estados en orden de ciclo de vida.
var AllRequestStatuses = []RequestStatus{
	RequestDraft, RequestSubmitted, RequestApproved, RequestRejected,
	RequestInProgress, RequestPartiallyIssued, RequestIssued, RequestCancelled,
}

// Valid indica si el estado es uno de los conocidos.
func (s RequestStatus) Valid() bool {
	for _, st := range AllRequestStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// IssueRequest solicitud de salida de materiales hecha por un usuario para un departamento.
type IssueRequest struct {
	ID           int64
	RequesterID  string
	DepartmentID int64
	Status       RequestStatus
	CreatedAt    time.Time
	ApprovedAt   *time.Time
	ApprovedByID *string
	Comment      *string
}

// IssueRequestItem línea de la solicitud: un producto, la cantidad pedida y la entregada.
type IssueRequestItem struct {
	ID           int64
	RequestID    int64
	ProductID    int64
	RequestedQty decimal.Decimal
	IssuedQty    decimal.Decimal
}

// Remaining cantidad pendiente por entregar.
func (i *IssueRequestItem) Remaining() decimal.Decimal {
	return i.RequestedQty.Sub(i.IssuedQty)
}

// FullyIssued indica si ya se entregó todo lo solicitado.
func (i *IssueRequestItem) FullyIssued() bool {
	return i.IssuedQty.GreaterThanOrEqual(i.RequestedQty)
}
