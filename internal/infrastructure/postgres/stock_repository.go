package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockBalanceRepository = (*StockRepo)(nil)

// StockRepo saldos por bodega+producto sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// EnsureRow inserta el saldo en cero; si dos transacciones compiten, la UNIQUE deja una sola fila.
func (r *StockRepo) EnsureRow(ctx context.Context, warehouseID, productID int64) error {
	query := `
		INSERT INTO stock_balances (warehouse_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (warehouse_id, product_id) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, warehouseID, productID); err != nil {
		return fmt.Errorf("ensure stock row: %w", err)
	}
	return nil
}

// GetForUpdate obtiene el saldo y bloquea la fila (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, warehouseID, productID int64) (*entity.StockBalance, error) {
	return r.get(ctx, warehouseID, productID, " FOR UPDATE")
}

// Get lectura sin bloqueo; nil si el par no existe.
func (r *StockRepo) Get(ctx context.Context, warehouseID, productID int64) (*entity.StockBalance, error) {
	return r.get(ctx, warehouseID, productID, "")
}

func (r *StockRepo) get(ctx context.Context, warehouseID, productID int64, lock string) (*entity.StockBalance, error) {
	query := `
		SELECT id, warehouse_id, product_id, quantity, updated_at
		FROM stock_balances WHERE warehouse_id = $1 AND product_id = $2` + lock
	var b entity.StockBalance
	err := r.q.QueryRow(ctx, query, warehouseID, productID).Scan(
		&b.ID, &b.WarehouseID, &b.ProductID, &b.Quantity, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &b, nil
}

// Update escribe cantidad y fecha. El CHECK quantity >= 0 de la tabla se traduce a stock insuficiente.
func (r *StockRepo) Update(ctx context.Context, balance *entity.StockBalance) error {
	query := `
		UPDATE stock_balances SET quantity = $3, updated_at = $4
		WHERE warehouse_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(ctx, query, balance.WarehouseID, balance.ProductID, balance.Quantity, balance.UpdatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: saldo %d/%d inexistente", balance.WarehouseID, balance.ProductID)
	}
	return nil
}

// List saldos con nombres de bodega y producto, ordenados por nombre de producto.
func (r *StockRepo) List(ctx context.Context, filter repository.BalanceFilter) ([]*entity.BalanceView, error) {
	query := `
		SELECT s.warehouse_id, w.name, s.product_id, p.sku, p.name, p.unit, s.quantity, s.updated_at
		FROM stock_balances s
		JOIN warehouses w ON w.id = s.warehouse_id
		JOIN products p ON p.id = s.product_id
		WHERE 1=1`
	var args []any
	pos := 1
	if filter.WarehouseID != nil {
		query += fmt.Sprintf(" AND s.warehouse_id = $%d", pos)
		args = append(args, *filter.WarehouseID)
		pos++
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query += fmt.Sprintf(" AND (p.sku ILIKE $%d OR p.name ILIKE $%d)", pos, pos)
		args = append(args, "%"+escapeLike(search)+"%")
	}
	query += " ORDER BY p.name, s.warehouse_id"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.BalanceView
	for rows.Next() {
		var v entity.BalanceView
		if err := rows.Scan(&v.WarehouseID, &v.WarehouseName, &v.ProductID, &v.SKU,
			&v.ProductName, &v.Unit, &v.Quantity, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
