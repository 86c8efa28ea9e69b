// Package pdf genera el listado imprimible de los leads de una cuenta.
//
// Layout de la página A4 apaisada:
//
//	┌───────────────────────────────────────────────────────────────┐
//	│  HEADER: Leadius + email de la cuenta  │  Fecha + total        │
//	│  ───────────────────────────────────────────────────────────  │
//	│  TABLA: Empresa | Teléfono | Email | Ubicación | Estado | Lock │
//	│  ───────────────────────────────────────────────────────────  │
//	│  RESUMEN: conteo por estado                                    │
//	└───────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Leadius-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 83, Blue: 138}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoLeadsPDF implementa usecase.LeadsPDFGenerator usando Maroto v2.
type MarotoLeadsPDF struct{}

// NewMarotoLeadsPDF construye el generador.
func NewMarotoLeadsPDF() *MarotoLeadsPDF { return &MarotoLeadsPDF{} }

// GenerateLeadsPDF genera el listado y devuelve sus bytes.
func (g *MarotoLeadsPDF) GenerateLeadsPDF(
	_ context.Context,
	account *entity.Account,
	leads []*entity.Lead,
	generatedAt time.Time,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Leads", true).
		WithAuthor("Leadius", true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(account, len(leads), generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableRows(leads)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(summaryRow(leads))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(account *entity.Account, total int, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New("Leadius", props.Text{
				Style: fontstyle.Bold, Size: 14, Color: colorPrimary, Top: 1,
			}),
			text.New(account.Email, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(4).Add(
			text.New("Generado: "+at.Format("2006-01-02 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 2, Color: colorGray,
			}),
			text.New(fmt.Sprintf("%d leads", total), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 8,
			}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2, Left: 1,
		}))
	}
	return row.New(8).Add(
		h("Empresa", 3),
		h("Teléfono", 2),
		h("Email", 2),
		h("Ubicación", 2),
		h("Estado", 1),
		h("Bloqueado hasta", 2),
	)
}

func tableRows(leads []*entity.Lead) []core.Row {
	cell := func(s string, size int) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Top: 1, Left: 1}))
	}
	result := make([]core.Row, 0, len(leads))
	for _, l := range leads {
		locked := "-"
		if l.LockedUntil != nil {
			locked = l.LockedUntil.Format("2006-01-02")
		}
		result = append(result, row.New(6).Add(
			cell(truncate(l.CompanyName, 40), 3),
			cell(l.Phone, 2),
			cell(deref(l.Email), 2),
			cell(l.Location, 2),
			cell(string(l.Status), 1),
			cell(locked, 2),
		))
	}
	return result
}

func summaryRow(leads []*entity.Lead) core.Row {
	counts := make(map[entity.LeadStatus]int, len(entity.LeadStatuses))
	for _, l := range leads {
		counts[l.Status]++
	}
	parts := make([]string, 0, len(entity.LeadStatuses))
	for _, st := range entity.LeadStatuses {
		parts = append(parts, fmt.Sprintf("%s: %d", st, counts[st]))
	}
	return row.New(8).Add(col.New(12).Add(
		text.New(strings.Join(parts, "   |   "), props.Text{Size: 8, Top: 2, Color: colorGray}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
