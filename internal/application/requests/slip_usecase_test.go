package requests_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

type slipCapture struct {
	got *requests.IssueSlip
}

func (g *slipCapture) GenerateIssueSlip(_ context.Context, slip requests.IssueSlip) ([]byte, error) {
	g.got = &slip
	return []byte("%PDF-fake"), nil
}

func newSlipUseCase(f *fixture, gen requests.SlipGenerator) *requests.SlipUseCase {
	return requests.NewSlipUseCase(
		memory.NewRequestRepository(f.store),
		memory.NewMovementRepository(f.store),
		memory.NewDepartmentRepository(f.store),
		memory.NewProductRepository(f.store),
		memory.NewWarehouseRepository(f.store),
		gen,
	)
}

func TestBuildSlip_LineasYSalidas(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.stock(t, prodA, "20")
	f.stock(t, prodB, "20")
	id := f.readyRequest(t, line(prodA, "10"), line(prodB, "4"))

	_, err := f.uc.IssueItem(ctx, bodeguero, id, issue(prodA, "6"))
	require.NoError(t, err)
	_, err = f.uc.IssueItem(ctx, bodeguero, id, issue(prodB, "4"))
	require.NoError(t, err)

	slip, err := newSlipUseCase(f, &slipCapture{}).BuildSlip(ctx, empleado, id)
	require.NoError(t, err)

	assert.Equal(t, "REQ-1", slip.DocumentNumber)
	assert.Equal(t, "Administración", slip.Department.Name)
	assert.Equal(t, entity.RequestPartiallyIssued, slip.Request.Status)

	require.Len(t, slip.Lines, 2)
	assert.Equal(t, "PAP-A4", slip.Lines[0].SKU)
	assert.True(t, d("4").Equal(slip.Lines[0].Remaining))
	assert.True(t, slip.Lines[1].Remaining.IsZero())

	require.Len(t, slip.Movements, 2)
	assert.Equal(t, "PAP-A4", slip.Movements[0].SKU, "orden cronológico")
	assert.Equal(t, "Bodega Central", slip.Movements[0].WarehouseName)
	assert.True(t, d("6").Equal(slip.Movements[0].Quantity), "magnitud positiva")
	assert.Equal(t, bodeguero.UserID, slip.Movements[1].PerformedByID)
}

func TestDownloadSlip(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	created, err := f.uc.Create(ctx, empleado, dtoItems(line(prodA, "1")))
	require.NoError(t, err)

	gen := &slipCapture{}
	uc := newSlipUseCase(f, gen)

	pdf, filename, err := uc.DownloadSlip(ctx, empleado, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "comprobante-REQ-1.pdf", filename)
	assert.Equal(t, "%PDF-fake", string(pdf))
	require.NotNil(t, gen.got)
	assert.Empty(t, gen.got.Movements)

	_, _, err = uc.DownloadSlip(ctx, empleado, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = uc.DownloadSlip(ctx, entity.Actor{}, created.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
