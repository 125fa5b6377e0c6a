package datanorm

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes t as comma-separated text with a header row. Booleans are
// written as True/False, dates as yyyy-mm-dd and missing cells as empty.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i, row := range t.Rows {
		for j, v := range row {
			rec[j] = v.String()
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SanitizedCSV renders the PII-free projection of t.
func SanitizedCSV(t *Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Sanitize(t)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
