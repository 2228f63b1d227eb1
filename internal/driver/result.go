package driver

import "github.com/cybertec-postgresql/dbal/internal/errors"

// Rows is the minimal cursor a driver has to provide; NewResult builds the
// full Result API on top of it.
type Rows interface {
	Columns() []string
	Next() bool
	Values() ([]any, error)
	Err() error
	Close() error

	// RowsAffected returns the affected row count reported by the server,
	// or -1 if unknown. It is only consulted after Close.
	RowsAffected() int64
}

// RowsResult implements Result over Rows.
type RowsResult struct {
	rows    Rows
	columns []string
	fetched int64
	done    bool
	freed   bool
}

var _ Result = (*RowsResult)(nil)

// NewResult wraps rows.
func NewResult(rows Rows) *RowsResult {
	return &RowsResult{rows: rows, columns: rows.Columns()}
}

func (r *RowsResult) FetchNumeric() ([]any, bool, error) {
	if r.freed {
		return nil, false, errors.ErrResultFreed
	}
	if r.done {
		return nil, false, nil
	}
	if !r.rows.Next() {
		r.done = true
		err := r.rows.Err()
		if cerr := r.rows.Close(); err == nil {
			err = cerr
		}
		return nil, false, err
	}
	values, err := r.rows.Values()
	if err != nil {
		return nil, false, err
	}
	r.fetched++
	return values, true, nil
}

func (r *RowsResult) FetchAssociative() (map[string]any, bool, error) {
	values, ok, err := r.FetchNumeric()
	if !ok || err != nil {
		return nil, ok, err
	}
	return Associate(r.columns, values), true, nil
}

func (r *RowsResult) FetchOne() (any, bool, error) {
	values, ok, err := r.FetchNumeric()
	if !ok || err != nil || len(values) == 0 {
		return nil, ok && len(values) > 0, err
	}
	return values[0], true, nil
}

func (r *RowsResult) FetchAllNumeric() ([][]any, error) {
	var all [][]any
	for {
		values, ok, err := r.FetchNumeric()
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, values)
	}
}

func (r *RowsResult) FetchAllAssociative() ([]map[string]any, error) {
	var all []map[string]any
	for {
		row, ok, err := r.FetchAssociative()
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}
		all = append(all, row)
	}
}

func (r *RowsResult) FetchFirstColumn() ([]any, error) {
	var column []any
	for {
		value, ok, err := r.FetchOne()
		if err != nil {
			return nil, err
		}
		if !ok {
			return column, nil
		}
		column = append(column, value)
	}
}

func (r *RowsResult) RowCount() (int64, error) {
	if r.done || r.freed {
		if n := r.rows.RowsAffected(); n >= 0 {
			return n, nil
		}
	}
	return r.fetched, nil
}

func (r *RowsResult) ColumnCount() int {
	return len(r.columns)
}

func (r *RowsResult) ColumnNames() []string {
	return r.columns
}

// Free releases the cursor; remaining rows are discarded.
func (r *RowsResult) Free() {
	if r.freed {
		return
	}
	r.freed = true
	if !r.done {
		_ = r.rows.Close()
	}
}

// Associate pairs column names with values. Later duplicates of a column
// name win.
func Associate(columns []string, values []any) map[string]any {
	row := make(map[string]any, len(columns))
	for i, name := range columns {
		if i < len(values) {
			row[name] = values[i]
		}
	}
	return row
}
