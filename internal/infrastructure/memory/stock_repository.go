package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockRepo)(nil)

// viewFunc da acceso al estado: el confirmado (con lock) o la copia de una transacción.
type viewFunc func(func(*state) error) error

// StockRepo saldos en memoria.
type StockRepo struct {
	store *Store
	view  viewFunc
}

// NewStockRepository repo fuera de transacción (lecturas de la API).
func NewStockRepository(store *Store) *StockRepo {
	return &StockRepo{store: store, view: store.live}
}

// EnsureRow crea el par en cero si no existe.
func (r *StockRepo) EnsureRow(_ context.Context, warehouseID, productID int64) error {
	return r.view(func(st *state) error {
		k := pairKey{warehouseID, productID}
		if _, ok := st.balances[k]; ok {
			return nil
		}
		st.seq.balance++
		st.balances[k] = &entity.StockBalance{
			ID:          st.seq.balance,
			WarehouseID: warehouseID,
			ProductID:   productID,
			Quantity:    decimal.Zero,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
}

// GetForUpdate en memoria el bloqueo lo da el mutex de la transacción.
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, productID int64) (*entity.StockBalance, error) {
	return r.Get(ctx, warehouseID, productID)
}

// Get devuelve una copia del saldo o nil.
func (r *StockRepo) Get(_ context.Context, warehouseID, productID int64) (*entity.StockBalance, error) {
	var out *entity.StockBalance
	err := r.view(func(st *state) error {
		if b, ok := st.balances[pairKey{warehouseID, productID}]; ok {
			cp := *b
			out = &cp
		}
		return nil
	})
	return out, err
}

// Update escribe cantidad y fecha del saldo.
func (r *StockRepo) Update(_ context.Context, balance *entity.StockBalance) error {
	return r.view(func(st *state) error {
		k := pairKey{balance.WarehouseID, balance.ProductID}
		b, ok := st.balances[k]
		if !ok {
			return errBalanceMissing
		}
		b.Quantity = balance.Quantity
		b.UpdatedAt = balance.UpdatedAt
		return nil
	})
}

// List proyección con nombres del catálogo, ordenada por nombre de producto.
func (r *StockRepo) List(_ context.Context, filter repository.BalanceFilter) ([]*entity.BalanceView, error) {
	var balances []entity.StockBalance
	err := r.view(func(st *state) error {
		for _, b := range st.balances {
			balances = append(balances, *b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]*entity.BalanceView, 0, len(balances))
	for _, b := range balances {
		if filter.WarehouseID != nil && b.WarehouseID != *filter.WarehouseID {
			continue
		}
		p := r.store.products[b.ProductID]
		w := r.store.warehouses[b.WarehouseID]
		if p == nil || w == nil {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.SKU), search) &&
			!strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, &entity.BalanceView{
			WarehouseID:   b.WarehouseID,
			WarehouseName: w.Name,
			ProductID:     b.ProductID,
			SKU:           p.SKU,
			ProductName:   p.Name,
			Unit:          p.Unit,
			Quantity:      b.Quantity,
			UpdatedAt:     b.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out, nil
}
