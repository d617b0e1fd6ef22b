package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ requests.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL. Si la transacción aborta por
// serialización o deadlock se reintenta completa hasta maxAttempts; agotados, domain.ErrConflict.
type TxRunner struct {
	pool        *pgxpool.Pool
	maxAttempts int
	log         zerolog.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, maxAttempts int, log zerolog.Logger) *TxRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &TxRunner{pool: pool, maxAttempts: maxAttempts, log: log.With().Str("component", "tx").Logger()}
}

// Run transacción con los repos del libro.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewStockRepository(tx), NewStockMovementRepository(tx))
	})
}

// RunRequests transacción con solicitudes y libro (transiciones y entregas).
func (r *TxRunner) RunRequests(ctx context.Context, fn func(
	reqRepo repository.IssueRequestRepository,
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.withRetry(ctx, func(tx pgx.Tx) error {
		return fn(NewIssueRequestRepository(tx), NewStockRepository(tx), NewStockMovementRepository(tx))
	})
}

func (r *TxRunner) withRetry(ctx context.Context, body func(tx pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt*100) * time.Millisecond):
			}
		}
		err = r.once(ctx, body)
		if err == nil || !isRetryable(err) {
			return err
		}
		r.log.Warn().Int("attempt", attempt+1).Err(err).Msg("transacción abortada, reintentando")
	}
	return fmt.Errorf("%w: %d intentos: %v", domain.ErrConflict, r.maxAttempts, err)
}

func (r *TxRunner) once(ctx context.Context, body func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := body(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
