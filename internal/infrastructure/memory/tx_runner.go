package memory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)
var _ requests.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones sobre el Store.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn con repos del libro sobre una copia del estado; la publica solo si fn no falla.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func(view viewFunc) error {
		return fn(&StockRepo{store: r.store, view: view}, &MovementRepo{view: view})
	})
}

// RunRequests igual que Run, añadiendo el repositorio de solicitudes.
func (r *TxRunner) RunRequests(ctx context.Context, fn func(
	reqRepo repository.IssueRequestRepository,
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	return r.run(ctx, func(view viewFunc) error {
		return fn(&RequestRepo{view: view}, &StockRepo{store: r.store, view: view}, &MovementRepo{view: view})
	})
}

func (r *TxRunner) run(ctx context.Context, body func(viewFunc) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	work := r.store.st.clone()
	view := func(f func(*state) error) error { return f(work) }
	if err := body(view); err != nil {
		return err
	}
	r.store.st = work
	return nil
}
