package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSONReporter formats rows as a JSON array of objects. Keys keep the
// column order of the result.
type JSONReporter struct{}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{}
}

// Format formats the table as JSON and writes to the writer
func (r *JSONReporter) Format(t *Table, writer io.Writer) error {
	data, err := r.marshal(t)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatString returns the table as a JSON string
func (r *JSONReporter) FormatString(t *Table) (string, error) {
	data, err := r.marshal(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *JSONReporter) marshal(t *Table) ([]byte, error) {
	if len(t.Rows) == 0 {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("[\n")
	for i, row := range t.Rows {
		buf.WriteString("  {")
		for j, column := range t.Columns {
			if j > 0 {
				buf.WriteString(", ")
			}
			key, _ := json.Marshal(column)
			buf.Write(key)
			buf.WriteString(": ")

			var value any
			if j < len(row) {
				value = displayValue(row[j])
			}
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal column %s to JSON: %w", column, err)
			}
			buf.Write(encoded)
		}
		buf.WriteString("}")
		if i < len(t.Rows)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("]")
	return buf.Bytes(), nil
}

// Name returns the name of this reporter
func (r *JSONReporter) Name() string {
	return "json"
}
