package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/issuerequest"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase flujo de solicitudes de salida: creación, aprobación, entrega y cancelación.
// Cada operación mutante corre en una transacción que bloquea primero la fila de la solicitud.
type UseCase struct {
	txRunner  TxRunner
	reqRepo   repository.IssueRequestRepository
	deptRepo  repository.DepartmentRepository
	ledger    Ledger
	publisher EventPublisher
	log       zerolog.Logger
}

// NewUseCase construye el caso de uso. publisher puede ser nil.
func NewUseCase(
	txRunner TxRunner,
	reqRepo repository.IssueRequestRepository,
	deptRepo repository.DepartmentRepository,
	ledger Ledger,
	publisher EventPublisher,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		reqRepo:   reqRepo,
		deptRepo:  deptRepo,
		ledger:    ledger,
		publisher: publisher,
		log:       log.With().Str("component", "requests").Logger(),
	}
}

// Create registra la solicitud en Submitted con todas sus líneas en una sola transacción.
func (uc *UseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateIssueRequest) (*dto.IssueRequestResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	lines := make([]issuerequest.NewItem, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, issuerequest.NewItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := issuerequest.ValidateItems(lines); err != nil {
		return nil, err
	}
	for _, it := range lines {
		if err := uc.ledger.CheckRefs(ctx, it.ProductID); err != nil {
			return nil, err
		}
	}
	deptID, err := uc.resolveDepartment(ctx, actor.UserID, in.DepartmentID)
	if err != nil {
		return nil, err
	}

	req := &entity.IssueRequest{
		RequesterID:  actor.UserID,
		DepartmentID: deptID,
		Status:       entity.RequestSubmitted,
		CreatedAt:    time.Now().UTC(),
		Comment:      in.Comment,
	}
	items := make([]*entity.IssueRequestItem, 0, len(lines))
	for _, it := range lines {
		items = append(items, &entity.IssueRequestItem{
			ProductID:    it.ProductID,
			RequestedQty: it.Quantity,
		})
	}

	err = uc.txRunner.RunRequests(ctx, func(
		reqRepo repository.IssueRequestRepository,
		_ repository.StockBalanceRepository,
		_ repository.StockMovementRepository,
	) error {
		return reqRepo.Create(ctx, req, items)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("request_id", req.ID).Int64("department_id", deptID).
		Int("items", len(items)).Str("user_id", actor.UserID).Msg("solicitud creada")
	uc.publish(ctx, EventCreated, req, actor, nil)

	out := dto.NewIssueRequestResponse(req, items)
	return &out, nil
}

// resolveDepartment: explícito (debe existir) → departamento del empleado → el de menor ID.
// Un ID <= 0 cuenta como no informado.
func (uc *UseCase) resolveDepartment(ctx context.Context, userID string, explicit *int64) (int64, error) {
	if explicit != nil && *explicit > 0 {
		dept, err := uc.deptRepo.GetByID(ctx, *explicit)
		if err != nil {
			return 0, fmt.Errorf("obtener departamento: %w", err)
		}
		if dept == nil {
			return 0, domain.ErrNotFound
		}
		return dept.ID, nil
	}
	dept, err := uc.deptRepo.GetByEmployeeUserID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("departamento del empleado: %w", err)
	}
	if dept != nil {
		return dept.ID, nil
	}
	dept, err = uc.deptRepo.GetFirst(ctx)
	if err != nil {
		return 0, fmt.Errorf("primer departamento: %w", err)
	}
	if dept == nil {
		return 0, domain.ErrDepartmentRequired
	}
	return dept.ID, nil
}

// Approve Submitted → Approved.
func (uc *UseCase) Approve(ctx context.Context, actor entity.Actor, id int64, in dto.RequestDecision) (*dto.IssueRequestResponse, error) {
	return uc.transition(ctx, actor, entity.PermApproveRequests, id, EventApproved, func(req *entity.IssueRequest) error {
		return issuerequest.Approve(req, actor.UserID, in.Comment, time.Now().UTC())
	})
}

// Reject Submitted → Rejected.
func (uc *UseCase) Reject(ctx context.Context, actor entity.Actor, id int64, in dto.RequestDecision) (*dto.IssueRequestResponse, error) {
	return uc.transition(ctx, actor, entity.PermApproveRequests, id, EventRejected, func(req *entity.IssueRequest) error {
		return issuerequest.Reject(req, actor.UserID, in.Comment, time.Now().UTC())
	})
}

// StartIssue Approved | PartiallyIssued → InProgress.
func (uc *UseCase) StartIssue(ctx context.Context, actor entity.Actor, id int64) (*dto.IssueRequestResponse, error) {
	return uc.transition(ctx, actor, entity.PermFulfillRequests, id, EventStarted, issuerequest.StartIssue)
}

// Cancel cualquier estado salvo Issued/Rejected/Cancelled → Cancelled.
// Lo ya entregado no se devuelve al almacén.
func (uc *UseCase) Cancel(ctx context.Context, actor entity.Actor, id int64, in dto.RequestDecision) (*dto.IssueRequestResponse, error) {
	return uc.transition(ctx, actor, "", id, EventCancelled, func(req *entity.IssueRequest) error {
		return issuerequest.Cancel(req, in.Comment)
	})
}

func (uc *UseCase) transition(
	ctx context.Context,
	actor entity.Actor,
	perm entity.Permission,
	id int64,
	eventType string,
	apply func(req *entity.IssueRequest) error,
) (*dto.IssueRequestResponse, error) {
	if err := actor.Require(perm); err != nil {
		return nil, err
	}
	var (
		req   *entity.IssueRequest
		items []*entity.IssueRequestItem
	)
	err := uc.txRunner.RunRequests(ctx, func(
		reqRepo repository.IssueRequestRepository,
		_ repository.StockBalanceRepository,
		_ repository.StockMovementRepository,
	) error {
		var err error
		req, err = lockRequest(ctx, reqRepo, id)
		if err != nil {
			return err
		}
		from := req.Status
		if err := apply(req); err != nil {
			uc.log.Debug().Int64("request_id", id).Str("from", string(from)).Str("event", eventType).
				Err(err).Msg("transición rechazada")
			return err
		}
		if err := reqRepo.Update(ctx, req); err != nil {
			return err
		}
		items, err = reqRepo.ListItems(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("request_id", id).Str("status", string(req.Status)).
		Str("user_id", actor.UserID).Msg("solicitud actualizada")
	uc.publish(ctx, eventType, req, actor, nil)

	out := dto.NewIssueRequestResponse(req, items)
	return &out, nil
}

// IssueItem entrega una cantidad de una línea desde una bodega: descuenta stock con un
// movimiento IssueByRequest, acumula lo entregado y recalcula el estado de la solicitud.
func (uc *UseCase) IssueItem(ctx context.Context, actor entity.Actor, id int64, in dto.IssueItemRequest) (*dto.IssueItemResponse, error) {
	if err := actor.Require(entity.PermFulfillRequests); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() || !entity.ValidScale(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.ledger.CheckRefs(ctx, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	var (
		req   *entity.IssueRequest
		items []*entity.IssueRequestItem
		mov   *entity.StockMovement
	)
	err := uc.txRunner.RunRequests(ctx, func(
		reqRepo repository.IssueRequestRepository,
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		req, err = lockRequest(ctx, reqRepo, id)
		if err != nil {
			return err
		}
		if err := issuerequest.CanIssue(req); err != nil {
			return err
		}
		items, err = reqRepo.ListItems(ctx, id)
		if err != nil {
			return err
		}
		item, err := issuerequest.FindItem(items, in.ProductID)
		if err != nil {
			return err
		}
		if err := issuerequest.Issue(item, in.Quantity); err != nil {
			return err
		}

		doc := issuerequest.DocumentNumber(id)
		mov, err = uc.ledger.ApplyMovementInTx(ctx, stockRepo, movRepo, inventory.MovementInput{
			WarehouseID:    in.WarehouseID,
			ProductID:      in.ProductID,
			Type:           entity.MovementIssueByRequest,
			Quantity:       in.Quantity,
			DocumentNumber: &doc,
			Comment:        in.Comment,
			PerformedByID:  actor.UserID,
			RequestID:      &id,
		})
		if err != nil {
			return err
		}
		if err := reqRepo.UpdateItemIssued(ctx, item); err != nil {
			return err
		}
		req.Status = issuerequest.DeriveStatus(items)
		return reqRepo.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Int64("request_id", id).Int64("product_id", in.ProductID).
		Int64("warehouse_id", in.WarehouseID).Str("quantity", in.Quantity.String()).
		Str("status", string(req.Status)).Str("user_id", actor.UserID).Msg("ítem entregado")
	uc.publish(ctx, EventItemIssued, req, actor, func(e *Event) {
		e.ProductID = &in.ProductID
		e.WarehouseID = &in.WarehouseID
		qty := in.Quantity
		e.Quantity = &qty
	})

	return &dto.IssueItemResponse{
		Request:  dto.NewIssueRequestResponse(req, items),
		Movement: dto.NewMovementResponse(mov),
	}, nil
}

// List solicitudes más recientes primero, opcionalmente por estado.
func (uc *UseCase) List(ctx context.Context, actor entity.Actor, status string) ([]dto.IssueRequestResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	var filter *entity.RequestStatus
	if status != "" {
		st := entity.RequestStatus(status)
		if !st.Valid() {
			return nil, domain.ErrInvalidInput
		}
		filter = &st
	}
	list, err := uc.reqRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar solicitudes: %w", err)
	}
	out := make([]dto.IssueRequestResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.NewIssueRequestResponse(r, nil))
	}
	return out, nil
}

// Get solicitud con sus líneas.
func (uc *UseCase) Get(ctx context.Context, actor entity.Actor, id int64) (*dto.IssueRequestResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	req, err := uc.reqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.reqRepo.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("líneas de la solicitud: %w", err)
	}
	out := dto.NewIssueRequestResponse(req, items)
	return &out, nil
}

// Items líneas de la solicitud ordenadas por ID.
func (uc *UseCase) Items(ctx context.Context, actor entity.Actor, id int64) ([]dto.RequestItemResponse, error) {
	resp, err := uc.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if resp.Items == nil {
		return []dto.RequestItemResponse{}, nil
	}
	return resp.Items, nil
}

func lockRequest(ctx context.Context, reqRepo repository.IssueRequestRepository, id int64) (*entity.IssueRequest, error) {
	req, err := reqRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (uc *UseCase) publish(ctx context.Context, eventType string, req *entity.IssueRequest, actor entity.Actor, decorate func(*Event)) {
	if uc.publisher == nil {
		return
	}
	evt := Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		RequestID:  req.ID,
		Status:     string(req.Status),
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	}
	if decorate != nil {
		decorate(&evt)
	}
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		uc.log.Warn().Err(err).Str("event", eventType).Int64("request_id", req.ID).Msg("no se pudo publicar el evento")
	}
}
