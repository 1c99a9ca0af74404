// Package pdf genera el estado de uso mensual de una cuenta enterprise.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Empresa + Tenant    │  Periodo + Fecha de emisión  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUENTA: Plan / Email de facturación / Prefijo de key       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Concepto | Valor                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Precio mensual del plan                           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: Leyenda                                            │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"
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

	appbilling "github.com/jhoicas/lavanderia-enterprise-api/internal/application/billing"
)

var _ appbilling.StatementPDFGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.StatementPDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// GenerateStatementPDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateStatementPDF(_ context.Context, st appbilling.Statement) ([]byte, error) {
	if st.Account == nil {
		return nil, fmt.Errorf("pdf: estado sin cuenta")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Estado de uso de API", true).
		WithAuthor(st.Account.CompanyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(st))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(accountRow(st))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range usageRows(st) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(priceRow(st))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(st))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: empresa + tenant (izq) y periodo + fecha de emisión (der).
func headerRow(st appbilling.Statement) core.Row {
	acc := st.Account
	return row.New(18).Add(
		col.New(7).Add(
			text.New(acc.CompanyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Tenant: "+acc.TenantID, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ESTADO DE USO DE API", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(st.Usage.Period.Start.Format("2006-01"), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Emitido: "+st.GeneratedAt.Format("02/01/2006 15:04")+" UTC", props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// accountRow: plan y datos de facturación.
func accountRow(st appbilling.Statement) core.Row {
	acc := st.Account
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DE LA CUENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Plan: %s   |   Facturación: %s   |   Key: %s...",
				acc.SubscriptionPlan,
				nonEmpty(acc.BillingEmail, "-"),
				acc.APIKeyPrefix,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Concepto", 8, align.Left),
		h("Valor", 4, align.Right),
	)
}

// usageRows: una fila por indicador del periodo.
func usageRows(st appbilling.Statement) []core.Row {
	result := make([]core.Row, 0, 5)
	for _, kv := range usageLines(st) {
		result = append(result, row.New(7).Add(
			col.New(8).Add(text.New(kv[0], props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(4).Add(text.New(kv[1], props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func usageLines(st appbilling.Statement) [][2]string {
	u := st.Usage
	quota, remaining, pct := "Ilimitada", "-", "-"
	if u.Quota != nil {
		quota = formatNumber(int64(*u.Quota))
		if u.Remaining != nil {
			remaining = formatNumber(*u.Remaining)
		}
		if *u.Quota > 0 {
			pct = strconv.FormatFloat(float64(u.Used)*100/float64(*u.Quota), 'f', 1, 64) + "%"
		}
	}
	return [][2]string{
		{"Periodo", u.Period.Start.Format("02/01/2006") + " - " + u.Period.End.AddDate(0, 0, -1).Format("02/01/2006")},
		{"Peticiones registradas", formatNumber(u.Used)},
		{"Cuota mensual", quota},
		{"Peticiones restantes", remaining},
		{"Consumo de cuota", pct},
	}
}

// priceRow: precio vigente del plan alineado a la derecha.
func priceRow(st appbilling.Statement) core.Row {
	price := st.Account.MonthlyPrice().StringFixed(2)
	return row.New(10).Add(
		col.New(6),
		col.New(3).Add(text.New("PRECIO MENSUAL:", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 2,
		})),
		col.New(3).Add(text.New("USD "+formatMoney(price), props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 2,
		})),
	)
}

func footerRow(st appbilling.Statement) core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New(
			"El contador se reinicia el "+st.Usage.Period.End.Format("02/01/2006")+". "+
				"Las peticiones a rutas de administración de la key y de consulta de cuota no consumen cuota.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatNumber inserta puntos de miles. Ej: 25000 → "25.000".
func formatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	k := len(s)
	if k <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	buf := make([]byte, 0, k+k/3+1)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(s) {
		if i > 0 && (k-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// formatMoney aplica separador de miles a la parte entera y coma decimal.
// Ej: "1250.50" → "1.250,50"
func formatMoney(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return s
	}
	if frac == "" {
		return formatNumber(n)
	}
	return formatNumber(n) + "," + frac
}
