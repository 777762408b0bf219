// Package export выгрузка журнала событий в CSV, XLSX и PDF.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

var _ ports.Exporter = (*Exporter)(nil)

// columns заголовки таблицы во всех форматах.
var columns = []string{"Дата и время", "Боец", "Действие", "Подробности"}

// Exporter выбирает генератор по формату.
type Exporter struct {
	loc *time.Location
	pdf *PDFGenerator
}

// NewExporter loc часовой пояс для дат в файлах; pdf может быть nil (встроенный шрифт).
func NewExporter(loc *time.Location, pdf *PDFGenerator) *Exporter {
	if loc == nil {
		loc = time.UTC
	}
	if pdf == nil {
		pdf = NewPDFGenerator(nil)
	}
	return &Exporter{loc: loc, pdf: pdf}
}

// Export собирает документ с именем journal_<дата>.<формат>.
func (e *Exporter) Export(ctx context.Context, format string, meta ports.ExportMeta, events []*entity.Event) (*ports.Document, error) {
	rows := e.rows(events)
	var (
		data []byte
		mime string
		err  error
	)
	switch format {
	case ports.FormatCSV:
		data, err = writeCSV(rows)
		mime = "text/csv"
	case ports.FormatXLSX:
		data, err = writeXLSX(meta, rows)
		mime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ports.FormatPDF:
		data, err = e.pdf.Generate(ctx, meta, rows)
		mime = "application/pdf"
	default:
		return nil, domain.NewValidationError("format", "Неизвестный формат выгрузки.")
	}
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("journal_%s.%s", time.Now().In(e.loc).Format("2006-01-02_1504"), format)
	return &ports.Document{Name: name, MIME: mime, Data: data}, nil
}

func (e *Exporter) rows(events []*entity.Event) [][]string {
	out := make([][]string, 0, len(events))
	for _, ev := range events {
		out = append(out, []string{
			ev.Timestamp.In(e.loc).Format("02.01.2006 15:04"),
			ev.Actor(),
			entity.ActionTitle(ev.Action),
			ev.Details,
		})
	}
	return out
}
