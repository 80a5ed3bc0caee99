// internal/snmp/rows.go
package snmp

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadRows parses a saved table snapshot: one CSV line per row, '#' comments allowed
func ReadRows(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

// WriteRows writes rows in the format ReadRows accepts
func WriteRows(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
