package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementFilter filtros del historial; los campos nil no filtran.
type MovementFilter struct {
	ProductID   *int64
	WarehouseID *int64
	Type        *entity.MovementType
	From        *time.Time
	To          *time.Time
	RequestID   *int64
	Limit       int
}

// StockMovementRepository puerto de persistencia del libro de movimientos (solo inserción y lectura).
type StockMovementRepository interface {
	// Create inserta el movimiento y asigna su ID.
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos más recientes primero, como máximo filter.Limit.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
}
