package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad del libro: saldo y movimiento se escriben juntos o no se escriben.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
	) error) error
}
