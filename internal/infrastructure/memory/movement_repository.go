package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo libro de movimientos en memoria (solo inserción).
type MovementRepo struct {
	view viewFunc
}

// NewMovementRepository repo fuera de transacción.
func NewMovementRepository(store *Store) *MovementRepo {
	return &MovementRepo{view: store.live}
}

// Create agrega el movimiento y asigna su ID.
func (r *MovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	return r.view(func(st *state) error {
		st.seq.movement++
		movement.ID = st.seq.movement
		cp := *movement
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// List filtra y devuelve los más recientes primero.
func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.view(func(st *state) error {
		for _, m := range st.movements {
			if f.ProductID != nil && m.ProductID != *f.ProductID {
				continue
			}
			if f.WarehouseID != nil && m.WarehouseID != *f.WarehouseID {
				continue
			}
			if f.Type != nil && m.Type != *f.Type {
				continue
			}
			if f.From != nil && m.OccurredAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.OccurredAt.After(*f.To) {
				continue
			}
			if f.RequestID != nil && (m.RequestID == nil || *m.RequestID != *f.RequestID) {
				continue
			}
			cp := *m
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}
