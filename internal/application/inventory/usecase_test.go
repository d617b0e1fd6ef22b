package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	bodeguero = entity.Actor{UserID: "u-bodega", Roles: []string{entity.RoleStorekeeper}}
	admin     = entity.Actor{UserID: "u-admin", Roles: []string{entity.RoleAdmin}}
	jefe      = entity.Actor{UserID: "u-jefe", Roles: []string{entity.RoleDepartmentHead}}
)

type fixture struct {
	store  *memory.Store
	ledger *inventory.LedgerUseCase
	query  *inventory.QueryUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.SeedDemo()
	products := memory.NewProductRepository(store)
	warehouses := memory.NewWarehouseRepository(store)
	return &fixture{
		store:  store,
		ledger: inventory.NewLedgerUseCase(memory.NewTxRunner(store), products, warehouses, zerolog.Nop()),
		query: inventory.NewQueryUseCase(
			memory.NewStockRepository(store), memory.NewMovementRepository(store), products, warehouses,
		),
	}
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func op(wh, prod int64, qty string) dto.StockOperationRequest {
	return dto.StockOperationRequest{WarehouseID: wh, ProductID: prod, Quantity: d(qty)}
}

func (f *fixture) balance(t *testing.T, wh, prod int64) decimal.Decimal {
	t.Helper()
	b, err := f.query.GetBalance(context.Background(), admin, wh, prod)
	require.NoError(t, err)
	return b.Quantity
}

func (f *fixture) movements(t *testing.T, wh, prod int64) []*entity.StockMovement {
	t.Helper()
	movs, err := memory.NewMovementRepository(f.store).List(context.Background(), repository.MovementFilter{
		WarehouseID: &wh, ProductID: &prod,
	})
	require.NoError(t, err)
	return movs
}

// ──────────────────────────────────────────────────────────────────────────────
// Operaciones del libro
// ──────────────────────────────────────────────────────────────────────────────

func TestReceiptYWriteOff_SaldoIgualSumaDeMovimientos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { _, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "10")); return err },
		func() error { _, err := f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "3")); return err },
		func() error { _, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "0.5")); return err },
		func() error { _, err := f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "20")); return err }, // falla
		func() error { _, err := f.ledger.Adjustment(ctx, admin, op(1, 1, "-2.5")); return err },
	}
	for i, step := range steps {
		err := step()
		if i == 3 {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		} else {
			require.NoError(t, err, "paso %d", i)
		}
		assert.True(t, f.balance(t, 1, 1).Equal(domaininv.Sum(f.movements(t, 1, 1))), "invariante tras paso %d", i)
	}
	assert.True(t, d("5").Equal(f.balance(t, 1, 1)))
	assert.Len(t, f.movements(t, 1, 1), 4, "la baja fallida no deja asiento")
}

func TestWriteOff_SeRegistraNegativo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 2, "8"))
	require.NoError(t, err)

	doc, comment := "BAJA-7", "cajas dañadas"
	in := op(1, 2, "3")
	in.DocumentNumber, in.Comment = &doc, &comment
	mov, err := f.ledger.WriteOff(ctx, bodeguero, in)
	require.NoError(t, err)

	assert.Equal(t, string(entity.MovementWriteOff), mov.Type)
	assert.True(t, d("-3").Equal(mov.Quantity))
	assert.Equal(t, "BAJA-7", *mov.DocumentNumber)
	assert.Equal(t, "cajas dañadas", *mov.Comment)
	assert.Equal(t, bodeguero.UserID, mov.PerformedByID)
	assert.Nil(t, mov.RequestID)
}

func TestReceipt_CantidadNoPositiva(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "0"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "-4"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Empty(t, f.movements(t, 1, 1))
}

func TestReceipt_ReferenciasInexistentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 999, "1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.ledger.Receipt(ctx, bodeguero, op(999, 1, "1"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPermisos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Receipt(ctx, jefe, op(1, 1, "1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.ledger.Adjustment(ctx, bodeguero, op(1, 1, "1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "solo Admin ajusta")
	_, err = f.ledger.Receipt(ctx, entity.Actor{}, op(1, 1, "1"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.query.ListBalances(ctx, entity.Actor{}, nil, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestWriteOffConcurrentes_SoloUnoGana(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "10"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	start := make(chan struct{})
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "6"))
		}(i)
	}
	close(start)
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.True(t, d("4").Equal(f.balance(t, 1, 1)))
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(2, 3, "100"))
	require.NoError(t, err)

	res, err := f.ledger.Transfer(ctx, bodeguero, dto.TransferRequest{
		FromWarehouseID: 2, ToWarehouseID: 1, ProductID: 3, Quantity: d("40"),
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.MovementTransferOut), res.Out.Type)
	assert.True(t, d("-40").Equal(res.Out.Quantity))
	assert.Equal(t, string(entity.MovementTransferIn), res.In.Type)
	assert.True(t, d("40").Equal(res.In.Quantity))

	assert.True(t, d("60").Equal(f.balance(t, 2, 3)))
	assert.True(t, d("40").Equal(f.balance(t, 1, 3)))

	_, err = f.ledger.Transfer(ctx, bodeguero, dto.TransferRequest{
		FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 3, Quantity: d("41"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("40").Equal(f.balance(t, 1, 3)), "un traslado fallido no deja la salida aplicada")
	assert.True(t, d("60").Equal(f.balance(t, 2, 3)))

	_, err = f.ledger.Transfer(ctx, bodeguero, dto.TransferRequest{
		FromWarehouseID: 1, ToWarehouseID: 1, ProductID: 3, Quantity: d("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCantidadesConMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "0.00001"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "se guardaría como 0.0000")

	_, err = f.ledger.Receipt(ctx, bodeguero, op(1, 1, "0.0001"))
	require.NoError(t, err)
	_, err = f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "0.00005"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.ledger.Adjustment(ctx, admin, op(1, 1, "-0.00005"))
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.ledger.Transfer(ctx, bodeguero, dto.TransferRequest{
		FromWarehouseID: 1, ToWarehouseID: 2, ProductID: 1, Quantity: d("0.00005"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	assert.True(t, d("0.0001").Equal(f.balance(t, 1, 1)))
	assert.True(t, domaininv.Sum(f.movements(t, 1, 1)).Equal(f.balance(t, 1, 1)), "saldo igual a la suma de movimientos")
	assert.Len(t, f.movements(t, 2, 1), 0)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListBalances_OrdenYBusqueda(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, in := range []dto.StockOperationRequest{op(1, 3, "5"), op(1, 1, "2"), op(2, 2, "7")} {
		_, err := f.ledger.Receipt(ctx, bodeguero, in)
		require.NoError(t, err)
	}

	all, err := f.query.ListBalances(ctx, jefe, nil, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Guantes de nitrilo", "Papel A4", "Tornillo M8"},
		[]string{all[0].ProductName, all[1].ProductName, all[2].ProductName})

	wh := int64(1)
	central, err := f.query.ListBalances(ctx, jefe, &wh, "")
	require.NoError(t, err)
	assert.Len(t, central, 2)

	bySKU, err := f.query.ListBalances(ctx, jefe, nil, "pap-")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	assert.Equal(t, "PAP-A4", bySKU[0].SKU)
}

func TestGetBalance_ParSinMovimientos(t *testing.T) {
	f := newFixture(t)
	b, err := f.query.GetBalance(context.Background(), jefe, 2, 1)
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())
	assert.Nil(t, b.UpdatedAt)
	assert.Equal(t, "Bodega Norte", b.WarehouseName)

	_, err = f.query.GetBalance(context.Background(), jefe, 2, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_TopeYOrden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < inventory.MaxMovementRows+10; i++ {
		_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "1"))
		require.NoError(t, err)
	}
	movs, err := f.query.ListMovements(ctx, jefe, dto.MovementQuery{})
	require.NoError(t, err)
	require.Len(t, movs, inventory.MaxMovementRows)
	assert.Greater(t, movs[0].ID, movs[len(movs)-1].ID, "más reciente primero")
	assert.Equal(t, int64(inventory.MaxMovementRows+10), movs[0].ID)
}

func TestListMovements_FiltroTipo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.Receipt(ctx, bodeguero, op(1, 1, "5"))
	require.NoError(t, err)
	_, err = f.ledger.WriteOff(ctx, bodeguero, op(1, 1, "1"))
	require.NoError(t, err)

	movs, err := f.query.ListMovements(ctx, jefe, dto.MovementQuery{Type: "WriteOff"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, d("-1").Equal(movs[0].Quantity))

	_, err = f.query.ListMovements(ctx, jefe, dto.MovementQuery{Type: "Robo"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
