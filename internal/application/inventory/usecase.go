package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// LedgerUseCase registra movimientos del libro de existencias de forma transaccional
// (Receipt, WriteOff, Adjustment, Transfer) con bloqueo de fila (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner      TxRunner
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	log           zerolog.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:      txRunner,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		log:           log.With().Str("component", "ledger").Logger(),
	}
}

// MovementInput datos de un asiento. Quantity es la magnitud; para Adjustment es el delta con signo.
type MovementInput struct {
	WarehouseID    int64
	ProductID      int64
	Type           entity.MovementType
	Quantity       decimal.Decimal
	DocumentNumber *string
	Comment        *string
	PerformedByID  string
	RequestID      *int64
}

// ApplyMovementInTx aplica un movimiento usando los repositorios de la transacción del caller.
// Es la única vía de escritura de saldos: crea el par en cero si no existe, lo bloquea,
// verifica que el saldo no quede negativo, lo actualiza y agrega el asiento.
func (uc *LedgerUseCase) ApplyMovementInTx(
	ctx context.Context,
	stockRepo repository.StockBalanceRepository,
	movRepo repository.StockMovementRepository,
	in MovementInput,
) (*entity.StockMovement, error) {
	delta, err := inventory.SignedDelta(in.Type, in.Quantity)
	if err != nil {
		return nil, err
	}
	if err := stockRepo.EnsureRow(ctx, in.WarehouseID, in.ProductID); err != nil {
		return nil, err
	}
	balance, err := stockRepo.GetForUpdate(ctx, in.WarehouseID, in.ProductID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return nil, fmt.Errorf("saldo %d/%d no encontrado tras crearlo", in.WarehouseID, in.ProductID)
	}
	next, err := inventory.ApplyDelta(balance.Quantity, delta)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	balance.Quantity = next
	balance.UpdatedAt = now
	if err := stockRepo.Update(ctx, balance); err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		WarehouseID:    in.WarehouseID,
		ProductID:      in.ProductID,
		Type:           in.Type,
		Quantity:       delta,
		OccurredAt:     now,
		DocumentNumber: in.DocumentNumber,
		Comment:        in.Comment,
		PerformedByID:  in.PerformedByID,
		RequestID:      in.RequestID,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// Receipt entrada de mercancía (suma existencias).
func (uc *LedgerUseCase) Receipt(ctx context.Context, actor entity.Actor, in dto.StockOperationRequest) (*dto.MovementResponse, error) {
	return uc.single(ctx, actor, entity.PermManageStock, entity.MovementReceipt, in)
}

// WriteOff baja de mercancía: la magnitud llega positiva y se descuenta.
func (uc *LedgerUseCase) WriteOff(ctx context.Context, actor entity.Actor, in dto.StockOperationRequest) (*dto.MovementResponse, error) {
	return uc.single(ctx, actor, entity.PermManageStock, entity.MovementWriteOff, in)
}

// Adjustment corrección con signo; es la única forma de enmendar el libro.
func (uc *LedgerUseCase) Adjustment(ctx context.Context, actor entity.Actor, in dto.StockOperationRequest) (*dto.MovementResponse, error) {
	return uc.single(ctx, actor, entity.PermAdjustStock, entity.MovementAdjustment, in)
}

func (uc *LedgerUseCase) single(
	ctx context.Context,
	actor entity.Actor,
	perm entity.Permission,
	typ entity.MovementType,
	in dto.StockOperationRequest,
) (*dto.MovementResponse, error) {
	if err := actor.Require(perm); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
	) error {
		var err error
		mov, err = uc.ApplyMovementInTx(ctx, stockRepo, movRepo, MovementInput{
			WarehouseID:    in.WarehouseID,
			ProductID:      in.ProductID,
			Type:           typ,
			Quantity:       in.Quantity,
			DocumentNumber: in.DocumentNumber,
			Comment:        in.Comment,
			PerformedByID:  actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("type", string(typ)).
		Int64("warehouse_id", mov.WarehouseID).
		Int64("product_id", mov.ProductID).
		Str("delta", mov.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("movimiento registrado")

	out := dto.NewMovementResponse(mov)
	return &out, nil
}

// Transfer traslada existencias entre bodegas en una sola transacción (TransferOut + TransferIn).
// Los saldos se bloquean en orden ascendente de bodega para que traslados cruzados no se bloqueen mutuamente.
func (uc *LedgerUseCase) Transfer(ctx context.Context, actor entity.Actor, in dto.TransferRequest) (*dto.TransferResponse, error) {
	if err := actor.Require(entity.PermManageStock); err != nil {
		return nil, err
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, domain.ErrInvalidInput
	}
	if !in.Quantity.IsPositive() || !entity.ValidScale(in.Quantity) {
		return nil, domain.ErrInvalidQuantity
	}
	if err := uc.checkRefs(ctx, in.ProductID, in.FromWarehouseID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	var out, inc *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockBalanceRepository,
		movRepo repository.StockMovementRepository,
	) error {
		first, second := in.FromWarehouseID, in.ToWarehouseID
		if second < first {
			first, second = second, first
		}
		for _, wh := range []int64{first, second} {
			if err := stockRepo.EnsureRow(ctx, wh, in.ProductID); err != nil {
				return err
			}
			if _, err := stockRepo.GetForUpdate(ctx, wh, in.ProductID); err != nil {
				return err
			}
		}

		var err error
		out, err = uc.ApplyMovementInTx(ctx, stockRepo, movRepo, MovementInput{
			WarehouseID:    in.FromWarehouseID,
			ProductID:      in.ProductID,
			Type:           entity.MovementTransferOut,
			Quantity:       in.Quantity,
			DocumentNumber: in.DocumentNumber,
			Comment:        in.Comment,
			PerformedByID:  actor.UserID,
		})
		if err != nil {
			return err
		}
		inc, err = uc.ApplyMovementInTx(ctx, stockRepo, movRepo, MovementInput{
			WarehouseID:    in.ToWarehouseID,
			ProductID:      in.ProductID,
			Type:           entity.MovementTransferIn,
			Quantity:       in.Quantity,
			DocumentNumber: in.DocumentNumber,
			Comment:        in.Comment,
			PerformedByID:  actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Int64("from_warehouse_id", in.FromWarehouseID).
		Int64("to_warehouse_id", in.ToWarehouseID).
		Int64("product_id", in.ProductID).
		Str("quantity", in.Quantity.String()).
		Str("user_id", actor.UserID).
		Msg("traslado registrado")

	return &dto.TransferResponse{
		Out: dto.NewMovementResponse(out),
		In:  dto.NewMovementResponse(inc),
	}, nil
}

// CheckRefs valida que el producto y las bodegas existan (ErrNotFound si alguno falta).
func (uc *LedgerUseCase) CheckRefs(ctx context.Context, productID int64, warehouseIDs ...int64) error {
	return uc.checkRefs(ctx, productID, warehouseIDs...)
}

func (uc *LedgerUseCase) checkRefs(ctx context.Context, productID int64, warehouseIDs ...int64) error {
	if productID <= 0 {
		return domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("obtener producto: %w", err)
	}
	if product == nil {
		return domain.ErrNotFound
	}
	for _, id := range warehouseIDs {
		if id <= 0 {
			return domain.ErrInvalidInput
		}
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("obtener bodega: %w", err)
		}
		if wh == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}
