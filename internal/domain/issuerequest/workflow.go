// Package issuerequest implementa la máquina de estados de las solicitudes de salida.
//
//	Submitted ──approve──▶ Approved ──start──▶ InProgress ◀──▶ PartiallyIssued ──▶ Issued
//	    │                                                                     ▲
//	    └──reject──▶ Rejected                   (start también desde PartiallyIssued)
//
//	Cancel: desde cualquier estado salvo Issued, Rejected y Cancelled.
//
// Las funciones no tocan persistencia: validan la transición y mutan la entidad en memoria.
package issuerequest

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// NewItem línea propuesta al crear una solicitud.
type NewItem struct {
	ProductID int64
	Quantity  decimal.Decimal
}

// ValidateItems exige al menos una línea, cantidades positivas y productos sin repetir.
func ValidateItems(items []NewItem) error {
	if len(items) == 0 {
		return domain.ErrEmptyItems
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if !it.Quantity.IsPositive() || !entity.ValidScale(it.Quantity) {
			return domain.ErrInvalidQuantity
		}
		if _, dup := seen[it.ProductID]; dup {
			return domain.ErrDuplicateItem
		}
		seen[it.ProductID] = struct{}{}
	}
	return nil
}

// DeriveStatus recalcula el estado de ejecución a partir de todas las líneas.
// No depende del orden de las líneas ni del estado previo.
func DeriveStatus(items []*entity.IssueRequestItem) entity.RequestStatus {
	if len(items) == 0 {
		return entity.RequestInProgress
	}
	allDone, someIssued := true, false
	for _, it := range items {
		if !it.FullyIssued() {
			allDone = false
		}
		if it.IssuedQty.IsPositive() {
			someIssued = true
		}
	}
	switch {
	case allDone:
		return entity.RequestIssued
	case someIssued:
		return entity.RequestPartiallyIssued
	default:
		return entity.RequestInProgress
	}
}

// Approve Submitted → Approved; registra aprobador y fecha.
func Approve(req *entity.IssueRequest, approverID string, comment *string, now time.Time) error {
	return decide(req, entity.RequestApproved, approverID, comment, now)
}

// Reject Submitted → Rejected; registra quién decidió y cuándo.
func Reject(req *entity.IssueRequest, approverID string, comment *string, now time.Time) error {
	return decide(req, entity.RequestRejected, approverID, comment, now)
}

func decide(req *entity.IssueRequest, to entity.RequestStatus, approverID string, comment *string, now time.Time) error {
	if req.Status != entity.RequestSubmitted {
		return domain.ErrInvalidStateTransition
	}
	req.Status = to
	req.ApprovedAt = &now
	req.ApprovedByID = &approverID
	if comment != nil {
		req.Comment = comment
	}
	return nil
}

// StartIssue Approved | PartiallyIssued → InProgress.
func StartIssue(req *entity.IssueRequest) error {
	switch req.Status {
	case entity.RequestApproved, entity.RequestPartiallyIssued:
		req.Status = entity.RequestInProgress
		return nil
	}
	return domain.ErrInvalidStateTransition
}

// Cancel mueve a Cancelled desde cualquier estado no terminal. No revierte existencias.
func Cancel(req *entity.IssueRequest, comment *string) error {
	switch req.Status {
	case entity.RequestIssued, entity.RequestRejected, entity.RequestCancelled:
		return domain.ErrInvalidStateTransition
	}
	req.Status = entity.RequestCancelled
	if comment != nil {
		req.Comment = comment
	}
	return nil
}

// CanIssue indica si la solicitud admite entregas (InProgress o PartiallyIssued).
func CanIssue(req *entity.IssueRequest) error {
	switch req.Status {
	case entity.RequestInProgress, entity.RequestPartiallyIssued:
		return nil
	}
	return domain.ErrInvalidStateTransition
}

// FindItem busca la línea del producto dentro de la solicitud.
func FindItem(items []*entity.IssueRequestItem, productID int64) (*entity.IssueRequestItem, error) {
	for _, it := range items {
		if it.ProductID == productID {
			return it, nil
		}
	}
	return nil, domain.ErrItemNotInRequest
}

// Issue suma qty a lo entregado de la línea si no supera lo pendiente.
func Issue(item *entity.IssueRequestItem, qty decimal.Decimal) error {
	if !qty.IsPositive() || !entity.ValidScale(qty) {
		return domain.ErrInvalidQuantity
	}
	if qty.GreaterThan(item.Remaining()) {
		return domain.ErrOverIssue
	}
	item.IssuedQty = item.IssuedQty.Add(qty)
	return nil
}

// DocumentNumber número de documento con el que se registran las salidas de la solicitud.
func DocumentNumber(requestID int64) string {
	return fmt.Sprintf("REQ-%d", requestID)
}
