package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo libro de movimientos sobre PostgreSQL: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, warehouse_id, product_id, type, quantity, occurred_at,
	document_number, comment, performed_by_id, request_id`

// Create inserta el movimiento y asigna el ID generado.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (warehouse_id, product_id, type, quantity, occurred_at,
			document_number, comment, performed_by_id, request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		m.WarehouseID, m.ProductID, string(m.Type), m.Quantity, m.OccurredAt,
		m.DocumentNumber, m.Comment, m.PerformedByID, m.RequestID,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// List historial filtrado, más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	query, args := buildMovementQuery(f)
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var typ string
		if err := rows.Scan(&m.ID, &m.WarehouseID, &m.ProductID, &typ, &m.Quantity, &m.OccurredAt,
			&m.DocumentNumber, &m.Comment, &m.PerformedByID, &m.RequestID); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		m.Type = entity.MovementType(typ)
		list = append(list, &m)
	}
	return list, rows.Err()
}

func buildMovementQuery(f repository.MovementFilter) (string, []any) {
	query := "SELECT " + movementColumns + " FROM stock_movements WHERE 1=1"
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND "+cond, len(args))
	}
	if f.ProductID != nil {
		add("product_id = $%d", *f.ProductID)
	}
	if f.WarehouseID != nil {
		add("warehouse_id = $%d", *f.WarehouseID)
	}
	if f.Type != nil {
		add("type = $%d", string(*f.Type))
	}
	if f.From != nil {
		add("occurred_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("occurred_at <= $%d", *f.To)
	}
	if f.RequestID != nil {
		add("request_id = $%d", *f.RequestID)
	}
	query += " ORDER BY occurred_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}
