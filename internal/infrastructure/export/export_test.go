package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
	"github.com/jhoicas/tabel-bot/internal/domain/entity"
	"github.com/jhoicas/tabel-bot/internal/infrastructure/export"
)

func sampleEvents() []*entity.Event {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	away := entity.NewEvent(42, string(entity.StatusAway), "Штаб; корпус 2", at)
	away.UserName = "Иванов И.И."
	sys := entity.NewSystemEvent(entity.ActionResetSettings, "", at.Add(time.Hour))
	return []*entity.Event{away, sys}
}

var meta = ports.ExportMeta{Title: "Журнал событий", PeriodLabel: "за сегодня", GeneratedBy: "Петров П.П."}

func TestExport_CSV(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)
	doc, err := export.NewExporter(loc, nil).Export(context.Background(), ports.FormatCSV, meta, sampleEvents())
	require.NoError(t, err)

	assert.Equal(t, "text/csv", doc.MIME)
	assert.True(t, strings.HasPrefix(doc.Name, "journal_"))
	assert.True(t, strings.HasSuffix(doc.Name, ".csv"))
	require.True(t, bytes.HasPrefix(doc.Data, []byte{0xEF, 0xBB, 0xBF}))

	r := csv.NewReader(bytes.NewReader(doc.Data[3:]))
	r.Comma = ';'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Дата и время", records[0][0])
	assert.Equal(t, []string{"01.06.2024 12:30", "Иванов И.И.", "убыл", "Штаб; корпус 2"}, records[1])
	assert.Equal(t, "Система", records[2][1])
	assert.Equal(t, "сброс настроек", records[2][2])
}

func TestExport_XLSX(t *testing.T) {
	doc, err := export.NewExporter(time.UTC, nil).Export(context.Background(), ports.FormatXLSX, meta, sampleEvents())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(doc.Name, ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Журнал", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Журнал событий за сегодня", title)

	header, err := f.GetCellValue("Журнал", "B4")
	require.NoError(t, err)
	assert.Equal(t, "Боец", header)

	name, err := f.GetCellValue("Журнал", "B5")
	require.NoError(t, err)
	assert.Equal(t, "Иванов И.И.", name)

	details, err := f.GetCellValue("Журнал", "D5")
	require.NoError(t, err)
	assert.Equal(t, "Штаб; корпус 2", details)
}

func TestExport_PDF(t *testing.T) {
	doc, err := export.NewExporter(time.UTC, nil).Export(context.Background(), ports.FormatPDF, meta, sampleEvents())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.MIME)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestExport_PDFEmpty(t *testing.T) {
	doc, err := export.NewExporter(time.UTC, nil).Export(context.Background(), ports.FormatPDF, meta, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc.Data, []byte("%PDF")))
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := export.NewExporter(time.UTC, nil).Export(context.Background(), "docx", meta, nil)
	require.Error(t, err)
}

func TestLoadFont_MissingFile(t *testing.T) {
	_, err := export.LoadFont("/nonexistent/font.ttf")
	assert.Error(t, err)
}
