package driver

// SliceRows serves buffered rows through the Rows interface.
type SliceRows struct {
	columns  []string
	rows     [][]any
	pos      int
	affected int64
	closed   bool
}

var _ Rows = (*SliceRows)(nil)

// NewSliceRows creates rows over data. The row count reported after Close
// is len(data).
func NewSliceRows(columns []string, data [][]any) *SliceRows {
	return &SliceRows{columns: columns, rows: data, pos: -1, affected: int64(len(data))}
}

func (s *SliceRows) Columns() []string {
	return s.columns
}

func (s *SliceRows) Next() bool {
	if s.closed || s.pos+1 >= len(s.rows) {
		return false
	}
	s.pos++
	return true
}

func (s *SliceRows) Values() ([]any, error) {
	row := make([]any, len(s.rows[s.pos]))
	copy(row, s.rows[s.pos])
	return row, nil
}

func (s *SliceRows) Err() error {
	return nil
}

func (s *SliceRows) Close() error {
	s.closed = true
	return nil
}

func (s *SliceRows) RowsAffected() int64 {
	return s.affected
}
