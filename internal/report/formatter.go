package report

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

// Table is a fully read query result.
type Table struct {
	Columns []string
	Rows    [][]any
}

// FromResult reads every row of res and frees it.
func FromResult(res driver.Result) (*Table, error) {
	defer res.Free()
	rows, err := res.FetchAllNumeric()
	if err != nil {
		return nil, err
	}
	return &Table{Columns: res.ColumnNames(), Rows: rows}, nil
}

// Formatter is an interface for query result formatters
type Formatter interface {
	// Format formats the table and writes to the writer
	Format(t *Table, writer io.Writer) error

	// FormatString returns the table as a string
	FormatString(t *Table) (string, error)

	// Name returns the name of this formatter
	Name() string
}

// FormatType represents supported output formats
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatTable FormatType = "table"
	FormatCSV   FormatType = "csv"
)

// GetFormatter returns a formatter for the specified format type
func GetFormatter(format FormatType) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(), nil
	case FormatTable:
		return NewTableReporter(), nil
	case FormatCSV:
		return NewCSVReporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(SupportedFormats(), ", "))
	}
}

// FormatToWriter formats a table to a writer using the specified format
func FormatToWriter(t *Table, format FormatType, writer io.Writer) error {
	formatter, err := GetFormatter(format)
	if err != nil {
		return err
	}
	return formatter.Format(t, writer)
}

// ValidFormat checks if a format string is valid
func ValidFormat(format string) bool {
	switch FormatType(format) {
	case FormatJSON, FormatTable, FormatCSV:
		return true
	default:
		return false
	}
}

// SupportedFormats returns a list of supported format names
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatTable), string(FormatCSV)}
}

// displayValue normalizes driver values for output. Byte slices that are
// not valid UTF-8 are shown as 0x-prefixed hex.
func displayValue(v any) any {
	switch x := v.(type) {
	case []byte:
		if utf8.Valid(x) {
			return string(x)
		}
		return "0x" + hex.EncodeToString(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	}
	return v
}

// text renders a value as a plain string; NULL renders as null.
func text(v any, null string) string {
	if v == nil {
		return null
	}
	return fmt.Sprint(displayValue(v))
}
