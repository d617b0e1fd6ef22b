package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSignedDelta_Signos(t *testing.T) {
	cases := []struct {
		typ  entity.MovementType
		qty  string
		want string
	}{
		{entity.MovementReceipt, "5", "5"},
		{entity.MovementTransferIn, "2.5", "2.5"},
		{entity.MovementWriteOff, "3", "-3"},
		{entity.MovementIssueByRequest, "1", "-1"},
		{entity.MovementTransferOut, "4", "-4"},
		{entity.MovementAdjustment, "-7", "-7"},
		{entity.MovementAdjustment, "7", "7"},
	}
	for _, tc := range cases {
		got, err := inventory.SignedDelta(tc.typ, d(tc.qty))
		require.NoError(t, err, tc.typ)
		assert.True(t, d(tc.want).Equal(got), "%s %s → %s", tc.typ, tc.qty, got)
	}
}

func TestSignedDelta_MagnitudNoPositiva(t *testing.T) {
	for _, typ := range []entity.MovementType{entity.MovementReceipt, entity.MovementWriteOff, entity.MovementIssueByRequest} {
		_, err := inventory.SignedDelta(typ, decimal.Zero)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		_, err = inventory.SignedDelta(typ, d("-1"))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	}
	_, err := inventory.SignedDelta(entity.MovementAdjustment, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestSignedDelta_TipoDesconocido(t *testing.T) {
	_, err := inventory.SignedDelta(entity.MovementType("Robo"), d("1"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplyDelta(t *testing.T) {
	got, err := inventory.ApplyDelta(d("10"), d("-10"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = inventory.ApplyDelta(d("10"), d("-10.5"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, d("10").Equal(got), "el saldo no cambia si falla")
}

func TestSum(t *testing.T) {
	movs := []*entity.StockMovement{
		{Quantity: d("10")}, {Quantity: d("-3")}, {Quantity: d("0.5")},
	}
	assert.True(t, d("7.5").Equal(inventory.Sum(movs)))
	assert.True(t, inventory.Sum(nil).IsZero())
}

func TestSignedDelta_MasDeCuatroDecimales(t *testing.T) {
	for _, typ := range []entity.MovementType{
		entity.MovementReceipt, entity.MovementWriteOff, entity.MovementIssueByRequest,
		entity.MovementTransferOut, entity.MovementTransferIn, entity.MovementAdjustment,
	} {
		_, err := inventory.SignedDelta(typ, d("0.00005"))
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, typ)
	}

	got, err := inventory.SignedDelta(entity.MovementWriteOff, d("0.0001"))
	require.NoError(t, err)
	assert.True(t, d("-0.0001").Equal(got))

	_, err = inventory.SignedDelta(entity.MovementReceipt, d("1.50000"))
	assert.NoError(t, err, "ceros a la derecha no cuentan como decimales")
}
