package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockOperationRequest body para POST /api/inventory/receipt, /writeoff y /adjustment.
// En receipt y writeoff Quantity es la magnitud (> 0); en adjustment es el delta con signo.
type StockOperationRequest struct {
	WarehouseID    int64           `json:"warehouse_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	DocumentNumber *string         `json:"document_number,omitempty"`
	Comment        *string         `json:"comment,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfer.
type TransferRequest struct {
	FromWarehouseID int64           `json:"from_warehouse_id"`
	ToWarehouseID   int64           `json:"to_warehouse_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	DocumentNumber  *string         `json:"document_number,omitempty"`
	Comment         *string         `json:"comment,omitempty"`
}

// MovementQuery filtros de GET /api/movements.
type MovementQuery struct {
	ProductID   *int64
	WarehouseID *int64
	Type        string
	From        *time.Time
	To          *time.Time
	RequestID   *int64
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID             int64           `json:"id"`
	WarehouseID    int64           `json:"warehouse_id"`
	ProductID      int64           `json:"product_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	OccurredAt     time.Time       `json:"occurred_at"`
	DocumentNumber *string         `json:"document_number,omitempty"`
	Comment        *string         `json:"comment,omitempty"`
	PerformedByID  string          `json:"performed_by_id"`
	RequestID      *int64          `json:"request_id,omitempty"`
}

// TransferResponse los dos asientos generados por un traslado.
type TransferResponse struct {
	Out MovementResponse `json:"out"`
	In  MovementResponse `json:"in"`
}

// BalanceResponse saldo de un producto en una bodega.
type BalanceResponse struct {
	WarehouseID   int64           `json:"warehouse_id"`
	WarehouseName string          `json:"warehouse_name"`
	ProductID     int64           `json:"product_id"`
	SKU           string          `json:"sku"`
	ProductName   string          `json:"product_name"`
	Unit          string          `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	UpdatedAt     *time.Time      `json:"updated_at,omitempty"`
}

// NewMovementResponse mapea un movimiento de dominio a su salida.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		WarehouseID:    m.WarehouseID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		OccurredAt:     m.OccurredAt,
		DocumentNumber: m.DocumentNumber,
		Comment:        m.Comment,
		PerformedByID:  m.PerformedByID,
		RequestID:      m.RequestID,
	}
}

// NewBalanceResponse mapea la proyección de saldo.
func NewBalanceResponse(v *entity.BalanceView) BalanceResponse {
	updated := v.UpdatedAt
	return BalanceResponse{
		WarehouseID:   v.WarehouseID,
		WarehouseName: v.WarehouseName,
		ProductID:     v.ProductID,
		SKU:           v.SKU,
		ProductName:   v.ProductName,
		Unit:          v.Unit,
		Quantity:      v.Quantity,
		UpdatedAt:     &updated,
	}
}
