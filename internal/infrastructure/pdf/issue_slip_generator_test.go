package pdf

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/requests"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

func TestFormatQty(t *testing.T) {
	cases := map[string]string{
		"10":        "10",
		"1234.5":    "1.234,5",
		"1000000":   "1.000.000",
		"0.25":      "0,25",
		"-3":        "-3",
		"-12345.75": "-12.345,75",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatQty(decimal.RequireFromString(in)), in)
	}
}

func TestGenerateIssueSlip(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC)
	approver := "u-jefe"
	slip := requests.IssueSlip{
		DocumentNumber: "REQ-12",
		Request: &entity.IssueRequest{
			ID: 12, RequesterID: "u-empleado", DepartmentID: 2,
			Status: entity.RequestPartiallyIssued, CreatedAt: now,
			ApprovedAt: &now, ApprovedByID: &approver,
		},
		Department: &entity.Department{ID: 2, Name: "Mantenimiento", Code: "MNT"},
		Lines: []requests.IssueSlipLine{{
			SKU: "PAP-A4", Name: "Papel A4", Unit: "resma",
			Requested: decimal.NewFromInt(10), Issued: decimal.NewFromInt(6), Remaining: decimal.NewFromInt(4),
		}},
		Movements: []requests.IssueSlipMovement{{
			OccurredAt: now, WarehouseName: "Bodega Central", SKU: "PAP-A4",
			Quantity: decimal.NewFromInt(6), PerformedByID: "u-bodega",
		}},
		GeneratedAt: now,
	}

	pdf, err := NewIssueSlipGenerator("Almacén General").GenerateIssueSlip(context.Background(), slip)
	require.NoError(t, err)
	require.Greater(t, len(pdf), 4)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestGenerateIssueSlip_SinSolicitud(t *testing.T) {
	_, err := NewIssueSlipGenerator("").GenerateIssueSlip(context.Background(), requests.IssueSlip{})
	assert.Error(t, err)
}
