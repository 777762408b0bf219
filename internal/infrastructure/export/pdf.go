package export

import (
	"context"
	"fmt"

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
	"github.com/johnfercher/maroto/v2/pkg/core/entity"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/johnfercher/maroto/v2/pkg/repository"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
)

// ── Палитра ──────────────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 38, Green: 70, Blue: 50}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorHeader  = &props.Color{Red: 217, Green: 225, Blue: 210}
)

const (
	defaultFamily = "helvetica"
	customFamily  = "journal"
)

// ── Генератор ────────────────────────────────────────────────────────────────

// PDFGenerator журнал в PDF через Maroto v2.
type PDFGenerator struct {
	family string
	fonts  []*entity.CustomFont
}

// NewPDFGenerator fonts загруженный кириллический шрифт (LoadFont) или nil.
func NewPDFGenerator(fonts []*entity.CustomFont) *PDFGenerator {
	if len(fonts) == 0 {
		return &PDFGenerator{family: defaultFamily}
	}
	return &PDFGenerator{family: customFamily, fonts: fonts}
}

// LoadFont регистрирует TTF-файл path для всех начертаний.
func LoadFont(path string) ([]*entity.CustomFont, error) {
	fonts, err := repository.New().
		AddUTF8Font(customFamily, fontstyle.Normal, path).
		AddUTF8Font(customFamily, fontstyle.Bold, path).
		AddUTF8Font(customFamily, fontstyle.Italic, path).
		AddUTF8Font(customFamily, fontstyle.BoldItalic, path).
		Load()
	if err != nil {
		return nil, fmt.Errorf("pdf: загрузить шрифт %s: %w", path, err)
	}
	return fonts, nil
}

// Generate A4, шапка с периодом и автором, затем таблица событий.
func (g *PDFGenerator) Generate(_ context.Context, meta ports.ExportMeta, rows [][]string) ([]byte, error) {
	b := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: g.family, Size: 9}).
		WithTitle(meta.Title, true).
		WithAuthor(meta.GeneratedBy, true)
	if len(g.fonts) > 0 {
		b = b.WithCustomFonts(g.fonts)
	}
	m := maroto.New(b.Build())

	m.AddRows(headerRow(meta, len(rows)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(tableHeaderRow())
	for _, r := range tableRows(rows) {
		m.AddRows(r)
	}
	if len(rows) == 0 {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("Событий нет.", props.Text{Size: 9, Align: align.Center, Top: 2, Color: colorGray}),
		)))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: сформировать документ: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Секции ───────────────────────────────────────────────────────────────────

func headerRow(meta ports.ExportMeta, count int) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(meta.Title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(meta.PeriodLabel, props.Text{Size: 9, Top: 8, Color: colorGray}),
		),
		col.New(4).Add(
			text.New(fmt.Sprintf("Записей: %d", count), props.Text{
				Size: 9, Align: align.Right, Top: 2,
			}),
			text.New(nonEmpty(meta.GeneratedBy, "—"), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
		),
	)
}

// widths ширины колонок в сетке из 12.
var widths = []int{2, 3, 2, 5}

func tableHeaderRow() core.Row {
	cols := make([]core.Col, 0, len(columns))
	for i, h := range columns {
		cols = append(cols, col.New(widths[i]).Add(text.New(h, props.Text{
			Style: fontstyle.Bold, Size: 8, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).WithStyle(&props.Cell{BackgroundColor: colorHeader}).Add(cols...)
}

func tableRows(rows [][]string) []core.Row {
	out := make([]core.Row, 0, len(rows))
	for _, r := range rows {
		cols := make([]core.Col, 0, len(r))
		for i, v := range r {
			cols = append(cols, col.New(widths[i]).Add(text.New(v, props.Text{
				Size: 8, Top: 1, Left: 1, Right: 1,
			})))
		}
		out = append(out, row.New(7).Add(cols...))
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
