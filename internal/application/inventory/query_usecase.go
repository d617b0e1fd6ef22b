package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// MaxMovementRows tope de filas del historial de movimientos.
const MaxMovementRows = 500

// QueryUseCase consultas de solo lectura sobre saldos y movimientos.
type QueryUseCase struct {
	stockRepo     repository.StockBalanceRepository
	movRepo       repository.StockMovementRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
}

// NewQueryUseCase construye el caso de uso.
func NewQueryUseCase(
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
) *QueryUseCase {
	return &QueryUseCase{
		stockRepo:     stockRepo,
		movRepo:       movRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
	}
}

// ListBalances saldos con nombres, filtrados por bodega y texto, ordenados por producto.
func (uc *QueryUseCase) ListBalances(ctx context.Context, actor entity.Actor, warehouseID *int64, search string) ([]dto.BalanceResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	views, err := uc.stockRepo.List(ctx, repository.BalanceFilter{WarehouseID: warehouseID, Search: search})
	if err != nil {
		return nil, fmt.Errorf("listar saldos: %w", err)
	}
	out := make([]dto.BalanceResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewBalanceResponse(v))
	}
	return out, nil
}

// GetBalance saldo de un par; si nunca tuvo movimientos devuelve cantidad cero.
func (uc *QueryUseCase) GetBalance(ctx context.Context, actor entity.Actor, warehouseID, productID int64) (*dto.BalanceResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("obtener producto: %w", err)
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("obtener bodega: %w", err)
	}
	if product == nil || wh == nil {
		return nil, domain.ErrNotFound
	}
	out := &dto.BalanceResponse{
		WarehouseID:   wh.ID,
		WarehouseName: wh.Name,
		ProductID:     product.ID,
		SKU:           product.SKU,
		ProductName:   product.Name,
		Unit:          product.Unit,
	}
	balance, err := uc.stockRepo.Get(ctx, warehouseID, productID)
	if err != nil {
		return nil, fmt.Errorf("obtener saldo: %w", err)
	}
	if balance != nil {
		out.Quantity = balance.Quantity
		out.UpdatedAt = &balance.UpdatedAt
	}
	return out, nil
}

// ListMovements historial filtrado, más reciente primero, máximo MaxMovementRows.
func (uc *QueryUseCase) ListMovements(ctx context.Context, actor entity.Actor, q dto.MovementQuery) ([]dto.MovementResponse, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}
	filter := repository.MovementFilter{
		ProductID:   q.ProductID,
		WarehouseID: q.WarehouseID,
		From:        q.From,
		To:          q.To,
		RequestID:   q.RequestID,
		Limit:       MaxMovementRows,
	}
	if q.Type != "" {
		t := entity.MovementType(q.Type)
		if !t.Valid() {
			return nil, domain.ErrInvalidInput
		}
		filter.Type = &t
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return nil, domain.ErrInvalidInput
	}
	movs, err := uc.movRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listar movimientos: %w", err)
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.NewMovementResponse(m))
	}
	return out, nil
}
