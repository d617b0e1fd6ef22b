package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// IssueRequestRepository puerto de persistencia de solicitudes de salida y sus líneas.
type IssueRequestRepository interface {
	// Create inserta la solicitud y sus líneas; asigna IDs a ambas.
	Create(ctx context.Context, req *entity.IssueRequest, items []*entity.IssueRequestItem) error
	GetByID(ctx context.Context, id int64) (*entity.IssueRequest, error)
	// GetForUpdate bloquea la solicitud; serializa todas las transiciones sobre ella.
	GetForUpdate(ctx context.Context, id int64) (*entity.IssueRequest, error)
	// ListItems líneas ordenadas por ID.
	ListItems(ctx context.Context, requestID int64) ([]*entity.IssueRequestItem, error)
	// List más recientes primero; status nil devuelve todas.
	List(ctx context.Context, status *entity.RequestStatus) ([]*entity.IssueRequest, error)
	// Update persiste estado, aprobación y comentario.
	Update(ctx context.Context, req *entity.IssueRequest) error
	UpdateItemIssued(ctx context.Context, item *entity.IssueRequestItem) error
}
