package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// TableReporter prints an aligned plain text table followed by a row count
type TableReporter struct{}

// NewTableReporter creates a new table reporter
func NewTableReporter() *TableReporter {
	return &TableReporter{}
}

func (r *TableReporter) Format(t *Table, writer io.Writer) error {
	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)

	if len(t.Columns) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
		rules := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			rules[i] = strings.Repeat("-", max(len(c), 4))
		}
		fmt.Fprintln(tw, strings.Join(rules, "\t"))
	}

	cells := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i := range t.Columns {
			var v any
			if i < len(row) {
				v = row[i]
			}
			cells[i] = strings.ReplaceAll(text(v, "NULL"), "\n", `\n`)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write table output: %w", err)
	}

	noun := "rows"
	if len(t.Rows) == 1 {
		noun = "row"
	}
	_, err := fmt.Fprintf(writer, "(%d %s)\n", len(t.Rows), noun)
	return err
}

func (r *TableReporter) FormatString(t *Table) (string, error) {
	var sb strings.Builder
	if err := r.Format(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (r *TableReporter) Name() string {
	return "table"
}
