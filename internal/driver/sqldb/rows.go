package sqldb

import (
	"database/sql"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

// binaryTypes are database type names whose []byte values are kept as bytes.
// Any other []byte value is text and returned as a string.
var binaryTypes = map[string]bool{
	"BLOB":       true,
	"BYTEA":      true,
	"BINARY":     true,
	"VARBINARY":  true,
	"TINYBLOB":   true,
	"MEDIUMBLOB": true,
	"LONGBLOB":   true,
	"BIT":        true,
	"GEOMETRY":   true,
}

type rows struct {
	rows    *sql.Rows
	columns []string
	binary  []bool
}

var _ driver.Rows = (*rows)(nil)

func newRows(r *sql.Rows) *rows {
	columns, _ := r.Columns()
	binary := make([]bool, len(columns))
	if colTypes, err := r.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			binary[i] = binaryTypes[strings.ToUpper(ct.DatabaseTypeName())]
		}
	}
	return &rows{rows: r, columns: columns, binary: binary}
}

func (r *rows) Columns() []string {
	return r.columns
}

func (r *rows) Next() bool {
	return r.rows.Next()
}

func (r *rows) Values() ([]any, error) {
	values := make([]any, len(r.columns))
	ptrs := make([]any, len(r.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	for i, v := range values {
		if b, ok := v.([]byte); ok {
			if r.binary[i] {
				values[i] = append([]byte(nil), b...)
			} else {
				values[i] = string(b)
			}
		}
	}
	return values, nil
}

func (r *rows) Err() error {
	return r.rows.Err()
}

func (r *rows) Close() error {
	return r.rows.Close()
}

func (r *rows) RowsAffected() int64 {
	return -1
}
