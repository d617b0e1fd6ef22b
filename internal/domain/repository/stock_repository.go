package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// BalanceFilter filtros de la consulta de saldos.
type BalanceFilter struct {
	WarehouseID *int64
	Search      string // subcadena de SKU o nombre de producto, sin distinguir mayúsculas
}

// StockBalanceRepository puerto para los saldos por bodega+producto.
// Las operaciones de escritura se usan dentro de transacciones (TxRunner).
type StockBalanceRepository interface {
	// EnsureRow crea el saldo en cero si el par aún no existe (no falla si ya existe).
	EnsureRow(ctx context.Context, warehouseID, productID int64) error
	// GetForUpdate obtiene el saldo y bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, warehouseID, productID int64) (*entity.StockBalance, error)
	// Get lectura sin bloqueo; nil si el par no tiene saldo.
	Get(ctx context.Context, warehouseID, productID int64) (*entity.StockBalance, error)
	Update(ctx context.Context, balance *entity.StockBalance) error
	// List proyección con nombres, ordenada por nombre de producto.
	List(ctx context.Context, filter BalanceFilter) ([]*entity.BalanceView, error)
}
