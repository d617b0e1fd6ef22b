package memory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository  = (*WarehouseRepo)(nil)
	_ repository.ProductRepository    = (*ProductRepo)(nil)
	_ repository.DepartmentRepository = (*DepartmentRepo)(nil)
)

// WarehouseRepo lectura de bodegas del catálogo en memoria.
type WarehouseRepo struct {
	store *Store
}

// NewWarehouseRepository construye el adaptador.
func NewWarehouseRepository(store *Store) *WarehouseRepo {
	return &WarehouseRepo{store: store}
}

// GetByID bodega o nil.
func (r *WarehouseRepo) GetByID(_ context.Context, id int64) (*entity.Warehouse, error) {
	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	if w, ok := r.store.warehouses[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

// ProductRepo lectura de productos del catálogo en memoria.
type ProductRepo struct {
	store *Store
}

// NewProductRepository construye el adaptador.
func NewProductRepository(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

// GetByID producto o nil.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	if p, ok := r.store.products[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

// DepartmentRepo lectura de departamentos y empleados.
type DepartmentRepo struct {
	store *Store
}

// NewDepartmentRepository construye el adaptador.
func NewDepartmentRepository(store *Store) *DepartmentRepo {
	return &DepartmentRepo{store: store}
}

// GetByID departamento o nil.
func (r *DepartmentRepo) GetByID(_ context.Context, id int64) (*entity.Department, error) {
	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	return r.get(id), nil
}

// GetByEmployeeUserID departamento del empleado vinculado al usuario, o nil.
func (r *DepartmentRepo) GetByEmployeeUserID(_ context.Context, userID string) (*entity.Department, error) {
	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	deptID, ok := r.store.employees[userID]
	if !ok {
		return nil, nil
	}
	return r.get(deptID), nil
}

// GetFirst departamento con menor ID, o nil si no hay ninguno.
func (r *DepartmentRepo) GetFirst(_ context.Context) (*entity.Department, error) {
	r.store.catMu.RLock()
	defer r.store.catMu.RUnlock()
	var first *entity.Department
	for _, d := range r.store.departments {
		if first == nil || d.ID < first.ID {
			first = d
		}
	}
	if first == nil {
		return nil, nil
	}
	cp := *first
	return &cp, nil
}

func (r *DepartmentRepo) get(id int64) *entity.Department {
	if d, ok := r.store.departments[id]; ok {
		cp := *d
		return &cp
	}
	return nil
}
