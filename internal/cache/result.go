package cache

import (
	"context"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/driver"
)

// ArrayResult replays buffered rows.
type ArrayResult struct {
	*driver.RowsResult
}

// NewArrayResult creates a result over rows.
func NewArrayResult(rows Rows) *ArrayResult {
	return &ArrayResult{driver.NewResult(driver.NewSliceRows(rows.Columns, rows.Data))}
}

// Lookup returns the cached result for realKey, if any.
func Lookup(ctx context.Context, c Cache, cacheKey, realKey string) (*ArrayResult, bool, error) {
	entry, ok, err := c.Get(ctx, cacheKey)
	if err != nil || !ok {
		return nil, false, err
	}
	rows, ok := entry[realKey]
	if !ok {
		return nil, false, nil
	}
	return NewArrayResult(rows), true, nil
}

// NewCachingResult wraps a live result. Rows are buffered as they are
// fetched and stored under (cacheKey, realKey) once the result has been read
// to the end; a result freed early stores nothing.
func NewCachingResult(ctx context.Context, c Cache, cacheKey, realKey string, lifetime time.Duration, inner driver.Result) *driver.RowsResult {
	return driver.NewResult(&cachingRows{
		ctx:      ctx,
		cache:    c,
		cacheKey: cacheKey,
		realKey:  realKey,
		lifetime: lifetime,
		inner:    inner,
	})
}

// cachingRows adapts a driver.Result back to driver.Rows so the buffering
// happens below the shared fetch logic.
type cachingRows struct {
	// ctx is the context of the query that produced the result.
	ctx      context.Context
	cache    Cache
	cacheKey string
	realKey  string
	lifetime time.Duration

	inner     driver.Result
	current   []any
	data      [][]any
	err       error
	exhausted bool
	closed    bool
}

var _ driver.Rows = (*cachingRows)(nil)

func (r *cachingRows) Columns() []string {
	return r.inner.ColumnNames()
}

func (r *cachingRows) Next() bool {
	if r.exhausted || r.err != nil {
		return false
	}
	row, ok, err := r.inner.FetchNumeric()
	if err != nil {
		r.err = err
		return false
	}
	if !ok {
		r.exhausted = true
		return false
	}
	r.current = row
	r.data = append(r.data, row)
	return true
}

func (r *cachingRows) Values() ([]any, error) {
	row := make([]any, len(r.current))
	copy(row, r.current)
	return row, nil
}

func (r *cachingRows) Err() error {
	return r.err
}

func (r *cachingRows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.inner.Free()
	if !r.exhausted {
		return nil
	}
	return r.store()
}

func (r *cachingRows) store() error {
	entry, ok, err := r.cache.Get(r.ctx, r.cacheKey)
	if err != nil {
		return err
	}
	if !ok {
		entry = make(Entry, 1)
	}
	data := r.data
	if data == nil {
		data = [][]any{}
	}
	entry[r.realKey] = Rows{Columns: r.Columns(), Data: data}
	return r.cache.Set(r.ctx, r.cacheKey, entry, r.lifetime)
}

func (r *cachingRows) RowsAffected() int64 {
	n, err := r.inner.RowCount()
	if err != nil {
		return -1
	}
	return n
}
