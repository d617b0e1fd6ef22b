// Package pdf genera el comprobante de salida de almacén de una solicitud.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: COMPROBANTE DE SALIDA   │  REQ-N + Estado + Fecha   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITUD: solicitante / departamento / aprobación         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: SKU | Producto | Unidad | Solicitado | Entregado ... │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SALIDAS: Fecha | Bodega | SKU | Cantidad | Responsable      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FIRMAS: Entrega / Recibe                                    │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/application/requests"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAccent  = &props.Color{Red: 180, Green: 90, Blue: 0}
)

var _ requests.SlipGenerator = (*IssueSlipGenerator)(nil)

// IssueSlipGenerator implementa requests.SlipGenerator usando Maroto v2.
type IssueSlipGenerator struct {
	organization string
}

// NewIssueSlipGenerator construye el generador; organization aparece en el encabezado.
func NewIssueSlipGenerator(organization string) *IssueSlipGenerator {
	return &IssueSlipGenerator{organization: organization}
}

// GenerateIssueSlip genera el PDF y devuelve sus bytes.
func (g *IssueSlipGenerator) GenerateIssueSlip(_ context.Context, slip requests.IssueSlip) ([]byte, error) {
	if slip.Request == nil {
		return nil, fmt.Errorf("pdf: comprobante sin solicitud")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de salida "+slip.DocumentNumber, true).
		WithAuthor(nonEmpty(g.organization, "Almacén"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(requestRow(slip))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("LÍNEAS SOLICITADAS"))
	m.AddRows(linesHeaderRow())
	m.AddRows(lineRows(slip.Lines)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(sectionTitle("SALIDAS REGISTRADAS"))
	if len(slip.Movements) == 0 {
		m.AddRows(row.New(7).Add(col.New(12).Add(
			text.New("Sin salidas registradas.", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
		)))
	} else {
		m.AddRows(movementsHeaderRow())
		m.AddRows(movementRows(slip.Movements)...)
	}

	m.AddRows(line.NewRow(12))
	m.AddRows(signatureRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *IssueSlipGenerator) headerRow(slip requests.IssueSlip) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.organization, "Almacén"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("COMPROBANTE DE SALIDA DE ALMACÉN", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(slip.DocumentNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Estado: "+string(slip.Request.Status), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 8, Color: colorAccent,
			}),
			text.New("Emitido: "+slip.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func requestRow(slip requests.IssueSlip) core.Row {
	req := slip.Request
	dept := "-"
	if slip.Department != nil {
		dept = nonEmpty(slip.Department.Name, fmt.Sprintf("#%d", slip.Department.ID))
		if slip.Department.Code != "" {
			dept += " (" + slip.Department.Code + ")"
		}
	}
	approval := "Pendiente"
	if req.ApprovedAt != nil {
		by := "-"
		if req.ApprovedByID != nil {
			by = *req.ApprovedByID
		}
		approval = fmt.Sprintf("%s por %s", req.ApprovedAt.Format("02/01/2006 15:04"), by)
	}
	comment := "-"
	if req.Comment != nil && strings.TrimSpace(*req.Comment) != "" {
		comment = *req.Comment
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("SOLICITUD", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Solicitante: %s   |   Departamento: %s   |   Creada: %s",
				req.RequesterID, dept, req.CreatedAt.Format("02/01/2006 15:04"),
			), props.Text{Size: 8, Top: 6}),
			text.New("Decisión: "+approval, props.Text{Size: 8, Top: 11, Color: colorGray}),
			text.New("Comentario: "+comment, props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

func headerCell(label string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(label, props.Text{
		Style: fontstyle.Bold, Size: 8, Align: a, Top: 2, Left: 1, Right: 1,
	}))
}

func cell(value string, size int, a align.Type) core.Col {
	return col.New(size).Add(text.New(value, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
}

func linesHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("SKU", 2, align.Left),
		headerCell("Producto", 4, align.Left),
		headerCell("Unidad", 1, align.Center),
		headerCell("Solicitado", 2, align.Right),
		headerCell("Entregado", 2, align.Right),
		headerCell("Pend.", 1, align.Right),
	)
}

func lineRows(lines []requests.IssueSlipLine) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		out = append(out, row.New(7).Add(
			cell(l.SKU, 2, align.Left),
			cell(l.Name, 4, align.Left),
			cell(nonEmpty(l.Unit, "-"), 1, align.Center),
			cell(formatQty(l.Requested), 2, align.Right),
			cell(formatQty(l.Issued), 2, align.Right),
			cell(formatQty(l.Remaining), 1, align.Right),
		))
	}
	return out
}

func movementsHeaderRow() core.Row {
	return row.New(8).Add(
		headerCell("Fecha", 3, align.Left),
		headerCell("Bodega", 3, align.Left),
		headerCell("SKU", 2, align.Left),
		headerCell("Cantidad", 2, align.Right),
		headerCell("Responsable", 2, align.Left),
	)
}

func movementRows(movs []requests.IssueSlipMovement) []core.Row {
	out := make([]core.Row, 0, len(movs))
	for _, mv := range movs {
		out = append(out, row.New(7).Add(
			cell(mv.OccurredAt.Format("02/01/2006 15:04"), 3, align.Left),
			cell(mv.WarehouseName, 3, align.Left),
			cell(mv.SKU, 2, align.Left),
			cell(formatQty(mv.Quantity), 2, align.Right),
			cell(mv.PerformedByID, 2, align.Left),
		))
	}
	return out
}

func signatureRow() core.Row {
	sign := func(label string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(label, props.Text{Size: 8, Align: align.Center, Top: 5, Color: colorGray}),
		)
	}
	return row.New(14).Add(sign("Entrega (almacén)"), sign("Recibe (departamento)"))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatQty separa miles con punto y decimales con coma, sin ceros de relleno.
// Ej: 1234.5 → "1.234,5", 10 → "10", -3 → "-3"
func formatQty(d decimal.Decimal) string {
	s := d.Abs().String()
	intPart, frac, _ := strings.Cut(s, ".")
	n := len(intPart)
	buf := make([]byte, 0, n+n/3+len(frac)+2)
	if d.IsNegative() {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	if frac != "" {
		buf = append(buf, ',')
		buf = append(buf, frac...)
	}
	return string(buf)
}
