package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/issuerequest"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// IssueSlipLine línea del comprobante con los datos del producto resueltos.
type IssueSlipLine struct {
	SKU       string
	Name      string
	Unit      string
	Requested decimal.Decimal
	Issued    decimal.Decimal
	Remaining decimal.Decimal
}

// IssueSlipMovement salida de almacén ya registrada para la solicitud.
type IssueSlipMovement struct {
	OccurredAt    time.Time
	WarehouseName string
	SKU           string
	Quantity      decimal.Decimal // magnitud entregada (positiva)
	PerformedByID string
}

// IssueSlip datos completos para imprimir el comprobante de una solicitud.
type IssueSlip struct {
	DocumentNumber string
	Request        *entity.IssueRequest
	Department     *entity.Department
	Lines          []IssueSlipLine
	Movements      []IssueSlipMovement
	GeneratedAt    time.Time
}

// SlipUseCase genera el comprobante PDF de una solicitud de salida.
type SlipUseCase struct {
	reqRepo       repository.IssueRequestRepository
	movRepo       repository.StockMovementRepository
	deptRepo      repository.DepartmentRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	generator     SlipGenerator
}

// NewSlipUseCase construye el caso de uso inyectando todas sus dependencias.
func NewSlipUseCase(
	reqRepo repository.IssueRequestRepository,
	movRepo repository.StockMovementRepository,
	deptRepo repository.DepartmentRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	generator SlipGenerator,
) *SlipUseCase {
	return &SlipUseCase{
		reqRepo:       reqRepo,
		movRepo:       movRepo,
		deptRepo:      deptRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		generator:     generator,
	}
}

// DownloadSlip arma el comprobante y lo renderiza.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la solicitud no existe.
//   - domain.ErrUnauthorized     si el llamador no está autenticado.
func (uc *SlipUseCase) DownloadSlip(ctx context.Context, actor entity.Actor, id int64) ([]byte, string, error) {
	slip, err := uc.BuildSlip(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	pdf, err := uc.generator.GenerateIssueSlip(ctx, *slip)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generar PDF: %w", err)
	}
	return pdf, "comprobante-" + slip.DocumentNumber + ".pdf", nil
}

// BuildSlip reúne solicitud, departamento, líneas y salidas registradas.
func (uc *SlipUseCase) BuildSlip(ctx context.Context, actor entity.Actor, id int64) (*IssueSlip, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}

	// ── 1. Solicitud ──────────────────────────────────────────────────────────
	req, err := uc.reqRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comprobante: obtener solicitud: %w", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	dept, err := uc.deptRepo.GetByID(ctx, req.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("comprobante: obtener departamento: %w", err)
	}
	if dept == nil {
		dept = &entity.Department{ID: req.DepartmentID}
	}

	// ── 2. Líneas con datos de producto ──────────────────────────────────────
	items, err := uc.reqRepo.ListItems(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("comprobante: líneas: %w", err)
	}
	products := make(map[int64]*entity.Product)
	product := func(pid int64) (*entity.Product, error) {
		if p, ok := products[pid]; ok {
			return p, nil
		}
		p, err := uc.productRepo.GetByID(ctx, pid)
		if err != nil {
			return nil, err
		}
		if p == nil {
			p = &entity.Product{ID: pid, SKU: fmt.Sprintf("#%d", pid)}
		}
		products[pid] = p
		return p, nil
	}
	lines := make([]IssueSlipLine, 0, len(items))
	for _, it := range items {
		p, err := product(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("comprobante: producto: %w", err)
		}
		lines = append(lines, IssueSlipLine{
			SKU:       p.SKU,
			Name:      p.Name,
			Unit:      p.Unit,
			Requested: it.RequestedQty,
			Issued:    it.IssuedQty,
			Remaining: it.Remaining(),
		})
	}

	// ── 3. Salidas ya registradas ─────────────────────────────────────────────
	movs, err := uc.movRepo.List(ctx, repository.MovementFilter{RequestID: &id, Limit: inventory.MaxMovementRows})
	if err != nil {
		return nil, fmt.Errorf("comprobante: movimientos: %w", err)
	}
	warehouses := make(map[int64]string)
	out := make([]IssueSlipMovement, 0, len(movs))
	for i := len(movs) - 1; i >= 0; i-- { // cronológico
		m := movs[i]
		name, ok := warehouses[m.WarehouseID]
		if !ok {
			wh, err := uc.warehouseRepo.GetByID(ctx, m.WarehouseID)
			if err != nil {
				return nil, fmt.Errorf("comprobante: bodega: %w", err)
			}
			name = fmt.Sprintf("#%d", m.WarehouseID)
			if wh != nil {
				name = wh.Name
			}
			warehouses[m.WarehouseID] = name
		}
		p, err := product(m.ProductID)
		if err != nil {
			return nil, fmt.Errorf("comprobante: producto: %w", err)
		}
		out = append(out, IssueSlipMovement{
			OccurredAt:    m.OccurredAt,
			WarehouseName: name,
			SKU:           p.SKU,
			Quantity:      m.Quantity.Abs(),
			PerformedByID: m.PerformedByID,
		})
	}

	return &IssueSlip{
		DocumentNumber: issuerequest.DocumentNumber(id),
		Request:        req,
		Department:     dept,
		Lines:          lines,
		Movements:      out,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}
