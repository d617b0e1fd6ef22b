package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.IssueRequestRepository = (*IssueRequestRepo)(nil)

// IssueRequestRepo solicitudes de salida y sus líneas sobre PostgreSQL.
type IssueRequestRepo struct {
	q Querier
}

// NewIssueRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIssueRequestRepository(q Querier) *IssueRequestRepo {
	return &IssueRequestRepo{q: q}
}

const requestColumns = `id, requester_id, department_id, status, created_at, approved_at, approved_by_id, comment`

// Create inserta cabecera y líneas. Debe llamarse dentro de una transacción.
func (r *IssueRequestRepo) Create(ctx context.Context, req *entity.IssueRequest, items []*entity.IssueRequestItem) error {
	query := `
		INSERT INTO issue_requests (requester_id, department_id, status, created_at, approved_at, approved_by_id, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		req.RequesterID, req.DepartmentID, string(req.Status), req.CreatedAt,
		req.ApprovedAt, req.ApprovedByID, req.Comment,
	).Scan(&req.ID)
	if err != nil {
		return fmt.Errorf("insert issue request: %w", err)
	}

	itemQuery := `
		INSERT INTO issue_request_items (request_id, product_id, requested_qty, issued_qty)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	for _, it := range items {
		it.RequestID = req.ID
		if err := r.q.QueryRow(ctx, itemQuery, it.RequestID, it.ProductID, it.RequestedQty, it.IssuedQty).Scan(&it.ID); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateItem
			}
			return fmt.Errorf("insert issue request item: %w", err)
		}
	}
	return nil
}

// GetByID obtiene una solicitud; nil si no existe.
func (r *IssueRequestRepo) GetByID(ctx context.Context, id int64) (*entity.IssueRequest, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate obtiene y bloquea la solicitud hasta el fin de la transacción.
func (r *IssueRequestRepo) GetForUpdate(ctx context.Context, id int64) (*entity.IssueRequest, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *IssueRequestRepo) get(ctx context.Context, id int64, lock string) (*entity.IssueRequest, error) {
	query := "SELECT " + requestColumns + " FROM issue_requests WHERE id = $1" + lock
	req, err := scanRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get issue request: %w", err)
	}
	return req, nil
}

// ListItems líneas ordenadas por ID.
func (r *IssueRequestRepo) ListItems(ctx context.Context, requestID int64) ([]*entity.IssueRequestItem, error) {
	query := `
		SELECT id, request_id, product_id, requested_qty, issued_qty
		FROM issue_request_items WHERE request_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list issue request items: %w", err)
	}
	defer rows.Close()
	var list []*entity.IssueRequestItem
	for rows.Next() {
		var it entity.IssueRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.ProductID, &it.RequestedQty, &it.IssuedQty); err != nil {
			return nil, fmt.Errorf("scan issue request item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}

// List más recientes primero; status nil devuelve todas.
func (r *IssueRequestRepo) List(ctx context.Context, status *entity.RequestStatus) ([]*entity.IssueRequest, error) {
	query := "SELECT " + requestColumns + " FROM issue_requests"
	var args []any
	if status != nil {
		query += " WHERE status = $1"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list issue requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.IssueRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan issue request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

// Update persiste estado, aprobación y comentario.
func (r *IssueRequestRepo) Update(ctx context.Context, req *entity.IssueRequest) error {
	query := `
		UPDATE issue_requests
		SET status = $2, approved_at = $3, approved_by_id = $4, comment = $5
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, req.ID, string(req.Status), req.ApprovedAt, req.ApprovedByID, req.Comment)
	if err != nil {
		return fmt.Errorf("update issue request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemIssued escribe la cantidad entregada acumulada. El CHECK issued_qty <= requested_qty
// respalda la validación del dominio.
func (r *IssueRequestRepo) UpdateItemIssued(ctx context.Context, item *entity.IssueRequestItem) error {
	query := `UPDATE issue_request_items SET issued_qty = $2 WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, item.ID, item.IssuedQty)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrOverIssue
		}
		return fmt.Errorf("update issued qty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotInRequest
	}
	return nil
}

func scanRequest(row pgx.Row) (*entity.IssueRequest, error) {
	var req entity.IssueRequest
	var status string
	if err := row.Scan(&req.ID, &req.RequesterID, &req.DepartmentID, &status, &req.CreatedAt,
		&req.ApprovedAt, &req.ApprovedByID, &req.Comment); err != nil {
		return nil, err
	}
	req.Status = entity.RequestStatus(status)
	return &req, nil
}
