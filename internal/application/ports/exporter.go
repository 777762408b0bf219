package ports

import (
	"context"

	"github.com/jhoicas/tabel-bot/internal/domain/entity"
)

// Форматы выгрузки журнала.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Document файл, отправляемый пользователю вложением.
type Document struct {
	Name string
	MIME string
	Data []byte
}

// ExportMeta шапка выгрузки.
type ExportMeta struct {
	Title       string
	PeriodLabel string
	GeneratedBy string
}

// Exporter превращает список событий в файл нужного формата.
type Exporter interface {
	Export(ctx context.Context, format string, meta ExportMeta, events []*entity.Event) (*Document, error)
}
