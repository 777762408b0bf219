package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/tabel-bot/internal/application/ports"
)

const sheetName = "Журнал"

var colWidths = []float64{18, 28, 22, 60}

func writeXLSX(meta ports.ExportMeta, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx: sheet: %w", err)
	}

	title := fmt.Sprintf("%s %s", meta.Title, meta.PeriodLabel)
	if err := f.SetCellValue(sheetName, "A1", title); err != nil {
		return nil, fmt.Errorf("xlsx: title: %w", err)
	}
	if meta.GeneratedBy != "" {
		if err := f.SetCellValue(sheetName, "A2", "Сформировал: "+meta.GeneratedBy); err != nil {
			return nil, fmt.Errorf("xlsx: author: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("xlsx: style: %w", err)
	}

	const headerRow = 4
	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx: header: %w", err)
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, headerRow)
	last, _ := excelize.CoordinatesToCellName(len(columns), headerRow)
	if err := f.SetCellStyle(sheetName, first, last, headerStyle); err != nil {
		return nil, fmt.Errorf("xlsx: header style: %w", err)
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, headerRow+1+r)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx: cell %s: %w", cell, err)
			}
		}
	}

	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheetName, col, col, w); err != nil {
			return nil, fmt.Errorf("xlsx: width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx: write: %w", err)
	}
	return buf.Bytes(), nil
}
