package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del libro de existencias.
type MovementType string

const (
	MovementReceipt        MovementType = "Receipt"
	MovementWriteOff       MovementType = "WriteOff"
	MovementIssueByRequest MovementType = "IssueByRequest"
	MovementTransferIn     MovementType = "TransferIn"
	MovementTransferOut    MovementType = "TransferOut"
	MovementAdjustment     MovementType = "Adjustment"
)

// Valid indica si el tipo es uno de los conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReceipt, MovementWriteOff, MovementIssueByRequest,
		MovementTransferIn, MovementTransferOut, MovementAdjustment:
		return true
	}
	return false
}

// StockMovement es un asiento inmutable del libro: Quantity es el delta con signo aplicado al saldo.
type StockMovement struct {
	ID             int64
	WarehouseID    int64
	ProductID      int64
	Type           MovementType
	Quantity       decimal.Decimal
	OccurredAt     time.Time
	DocumentNumber *string
	Comment        *string
	PerformedByID  string
	RequestID      *int64
}
