package requests

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner transacción con los repositorios de solicitudes y del libro (para IssueItem y transiciones).
type TxRunner interface {
	RunRequests(ctx context.Context, fn func(
		reqRepo repository.IssueRequestRepository,
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}

// Ledger puerto hacia el libro de existencias; toda salida de stock pasa por aquí.
// Implementado por inventory.LedgerUseCase.
type Ledger interface {
	ApplyMovementInTx(
		ctx context.Context,
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
		in inventory.MovementInput,
	) (*entity.StockMovement, error)
	CheckRefs(ctx context.Context, productID int64, warehouseIDs ...int64) error
}

// Tipos de evento publicados tras cada transición confirmada.
const (
	EventCreated    = "request.created"
	EventApproved   = "request.approved"
	EventRejected   = "request.rejected"
	EventStarted    = "request.started"
	EventItemIssued = "request.item_issued"
	EventCancelled  = "request.cancelled"
)

// Event notificación de cambio de una solicitud.
type Event struct {
	ID          string           `json:"id"`
	Type        string           `json:"type"`
	RequestID   int64            `json:"request_id"`
	Status      string           `json:"status"`
	ActorID     string           `json:"actor_id"`
	ProductID   *int64           `json:"product_id,omitempty"`
	WarehouseID *int64           `json:"warehouse_id,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

// EventPublisher publica eventos fuera de la transacción; un fallo no revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, evt Event) error
}

// SlipGenerator genera el comprobante imprimible (PDF) de una solicitud.
type SlipGenerator interface {
	GenerateIssueSlip(ctx context.Context, slip IssueSlip) ([]byte, error)
}
