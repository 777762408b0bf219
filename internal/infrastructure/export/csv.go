package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// utf8BOM чтобы Excel открывал кириллицу без мастера импорта.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// writeCSV разделитель ';' как в русской локали Excel.
func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("csv: header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("csv: rows: %w", err)
	}
	return buf.Bytes(), nil
}
