package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.WarehouseRepository  = (*WarehouseRepo)(nil)
	_ repository.ProductRepository    = (*ProductRepo)(nil)
	_ repository.DepartmentRepository = (*DepartmentRepo)(nil)
)

// WarehouseRepo lectura de bodegas.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// GetByID obtiene una bodega por ID; nil si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id int64) (*entity.Warehouse, error) {
	var w entity.Warehouse
	err := r.q.QueryRow(ctx, `SELECT id, name FROM warehouses WHERE id = $1`, id).Scan(&w.ID, &w.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get warehouse: %w", err)
	}
	return &w, nil
}

// ProductRepo lectura del catálogo de productos.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	query := `SELECT id, sku, name, unit, description FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.SKU, &p.Name, &p.Unit, &p.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// DepartmentRepo departamentos y vínculo empleado→departamento.
type DepartmentRepo struct {
	q Querier
}

// NewDepartmentRepository construye el adaptador de departamentos.
func NewDepartmentRepository(q Querier) *DepartmentRepo {
	return &DepartmentRepo{q: q}
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id int64) (*entity.Department, error) {
	return r.one(ctx, `SELECT id, name, code FROM departments WHERE id = $1`, id)
}

// GetByEmployeeUserID departamento del empleado vinculado al usuario; nil si no hay vínculo.
func (r *DepartmentRepo) GetByEmployeeUserID(ctx context.Context, userID string) (*entity.Department, error) {
	query := `
		SELECT d.id, d.name, d.code
		FROM employees e JOIN departments d ON d.id = e.department_id
		WHERE e.user_id = $1`
	return r.one(ctx, query, userID)
}

// GetFirst departamento con menor ID.
func (r *DepartmentRepo) GetFirst(ctx context.Context) (*entity.Department, error) {
	return r.one(ctx, `SELECT id, name, code FROM departments ORDER BY id LIMIT 1`)
}

func (r *DepartmentRepo) one(ctx context.Context, query string, args ...any) (*entity.Department, error) {
	var d entity.Department
	if err := r.q.QueryRow(ctx, query, args...).Scan(&d.ID, &d.Name, &d.Code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return &d, nil
}
