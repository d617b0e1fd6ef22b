package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	errBalanceMissing = errors.New("memory: saldo inexistente")
	errItemMissing    = errors.New("memory: línea inexistente")
)

var _ repository.IssueRequestRepository = (*RequestRepo)(nil)

// RequestRepo solicitudes de salida en memoria.
type RequestRepo struct {
	view viewFunc
}

// NewRequestRepository repo fuera de transacción.
func NewRequestRepository(store *Store) *RequestRepo {
	return &RequestRepo{view: store.live}
}

// Create asigna IDs a la solicitud y sus líneas.
func (r *RequestRepo) Create(_ context.Context, req *entity.IssueRequest, items []*entity.IssueRequestItem) error {
	return r.view(func(st *state) error {
		seen := make(map[int64]struct{}, len(items))
		for _, it := range items {
			if _, dup := seen[it.ProductID]; dup {
				return domain.ErrDuplicateItem
			}
			seen[it.ProductID] = struct{}{}
		}
		st.seq.request++
		req.ID = st.seq.request
		st.requests[req.ID] = copyRequest(req)
		list := make([]*entity.IssueRequestItem, 0, len(items))
		for _, it := range items {
			st.seq.item++
			it.ID = st.seq.item
			it.RequestID = req.ID
			cp := *it
			list = append(list, &cp)
		}
		st.items[req.ID] = list
		return nil
	})
}

// GetByID copia de la solicitud o nil.
func (r *RequestRepo) GetByID(_ context.Context, id int64) (*entity.IssueRequest, error) {
	var out *entity.IssueRequest
	err := r.view(func(st *state) error {
		if req, ok := st.requests[id]; ok {
			out = copyRequest(req)
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de la transacción el mutex ya serializa.
func (r *RequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.IssueRequest, error) {
	return r.GetByID(ctx, id)
}

// ListItems copias de las líneas ordenadas por ID.
func (r *RequestRepo) ListItems(_ context.Context, requestID int64) ([]*entity.IssueRequestItem, error) {
	var out []*entity.IssueRequestItem
	err := r.view(func(st *state) error {
		for _, it := range st.items[requestID] {
			cp := *it
			out = append(out, &cp)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

// List más recientes primero.
func (r *RequestRepo) List(_ context.Context, status *entity.RequestStatus) ([]*entity.IssueRequest, error) {
	var out []*entity.IssueRequest
	err := r.view(func(st *state) error {
		for _, req := range st.requests {
			if status != nil && req.Status != *status {
				continue
			}
			out = append(out, copyRequest(req))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

// Update persiste estado, aprobación y comentario.
func (r *RequestRepo) Update(_ context.Context, req *entity.IssueRequest) error {
	return r.view(func(st *state) error {
		cur, ok := st.requests[req.ID]
		if !ok {
			return domain.ErrNotFound
		}
		upd := copyRequest(req)
		upd.RequesterID = cur.RequesterID
		upd.DepartmentID = cur.DepartmentID
		upd.CreatedAt = cur.CreatedAt
		st.requests[req.ID] = upd
		return nil
	})
}

// UpdateItemIssued escribe la cantidad entregada de la línea.
func (r *RequestRepo) UpdateItemIssued(_ context.Context, item *entity.IssueRequestItem) error {
	return r.view(func(st *state) error {
		for _, it := range st.items[item.RequestID] {
			if it.ID == item.ID {
				it.IssuedQty = item.IssuedQty
				return nil
			}
		}
		return errItemMissing
	})
}
