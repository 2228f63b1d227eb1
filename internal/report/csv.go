package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVReporter writes a header line and one record per row. NULL is an
// empty field.
type CSVReporter struct{}

// NewCSVReporter creates a new CSV reporter
func NewCSVReporter() *CSVReporter {
	return &CSVReporter{}
}

func (r *CSVReporter) Format(t *Table, writer io.Writer) error {
	w := csv.NewWriter(writer)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			record[i] = text(v, "")
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func (r *CSVReporter) FormatString(t *Table) (string, error) {
	var sb strings.Builder
	if err := r.Format(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *CSVReporter) Name() string {
	return "csv"
}
