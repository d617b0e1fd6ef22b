// Package inventory contiene las reglas puras del libro de existencias (servicio de dominio).
package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// SignedDelta convierte la magnitud recibida en el delta con signo que se aplica al saldo.
//
// Receipt y TransferIn suman; WriteOff, IssueByRequest y TransferOut restan una magnitud
// positiva; Adjustment recibe el delta ya firmado y solo exige que no sea cero.
// Más de QuantityScale decimales es ErrInvalidQuantity.
func SignedDelta(t entity.MovementType, qty decimal.Decimal) (decimal.Decimal, error) {
	if !entity.ValidScale(qty) {
		return decimal.Zero, domain.ErrInvalidQuantity
	}
	switch t {
	case entity.MovementReceipt, entity.MovementTransferIn:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidQuantity
		}
		return qty, nil
	case entity.MovementWriteOff, entity.MovementIssueByRequest, entity.MovementTransferOut:
		if !qty.IsPositive() {
			return decimal.Zero, domain.ErrInvalidQuantity
		}
		return qty.Neg(), nil
	case entity.MovementAdjustment:
		if qty.IsZero() {
			return decimal.Zero, domain.ErrInvalidQuantity
		}
		return qty, nil
	}
	return decimal.Zero, domain.ErrInvalidInput
}

// ApplyDelta calcula el nuevo saldo; nunca permite existencias negativas.
func ApplyDelta(current, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// Sum suma los deltas de una lista de movimientos (debe coincidir con el saldo del par).
func Sum(movements []*entity.StockMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Quantity)
	}
	return total
}
