package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbalerrors "github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

type stubDriver struct{ name string }

func (d stubDriver) Connect(context.Context, types.Params) (Connection, error) {
	return nil, errors.New("not implemented")
}
func (d stubDriver) ExceptionConverter() ExceptionConverter { return nil }
func (d stubDriver) Platform() Platform                     { return Platform{Name: "sqlite"} }
func (d stubDriver) Name() string                           { return d.name }

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("b", stubDriver{"b"})
	r.Register("a", stubDriver{"a"})

	assert.Equal(t, []string{"a", "b"}, r.Drivers())

	d, err := r.Lookup("a")
	require.NoError(t, err)
	assert.Equal(t, "a", d.Name())

	_, err = r.Lookup("c")
	assert.ErrorIs(t, err, dbalerrors.ErrUnknownDriver)
	assert.Contains(t, err.Error(), "[a b]")

	assert.Panics(t, func() { r.Register("a", stubDriver{"a"}) })
	assert.Panics(t, func() { r.Register("nil", nil) })
}

func TestPlatform_NewConverter(t *testing.T) {
	c := Platform{Name: "pgsql"}.NewConverter()
	c.AcceptOther("SELECT ")
	c.AcceptPositionalParameter("?")
	assert.Equal(t, "SELECT $1", c.SQL())

	fallback := Platform{Name: "unknown"}.NewConverter()
	fallback.AcceptNamedParameter(":x")
	assert.Equal(t, "?", fallback.SQL())
}

func newTestResult() *RowsResult {
	return NewResult(NewSliceRows(
		[]string{"id", "name"},
		[][]any{{1, "a"}, {2, "b"}, {3, "c"}},
	))
}

func TestRowsResult_Fetch(t *testing.T) {
	r := newTestResult()
	assert.Equal(t, 2, r.ColumnCount())
	assert.Equal(t, []string{"id", "name"}, r.ColumnNames())

	row, ok, err := r.FetchNumeric()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []any{1, "a"}, row)

	assoc, ok, err := r.FetchAssociative()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"id": 2, "name": "b"}, assoc)

	one, ok, err := r.FetchOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, one)

	_, ok, err = r.FetchNumeric()
	require.NoError(t, err)
	assert.False(t, ok)

	// exhausted results stay exhausted
	_, ok, _ = r.FetchAssociative()
	assert.False(t, ok)

	n, err := r.RowCount()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestRowsResult_FetchAll(t *testing.T) {
	all, err := newTestResult().FetchAllNumeric()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	assoc, err := newTestResult().FetchAllAssociative()
	require.NoError(t, err)
	assert.Equal(t, "c", assoc[2]["name"])

	col, err := newTestResult().FetchFirstColumn()
	require.NoError(t, err)
	assert.Equal(t, []any{1, 2, 3}, col)
}

func TestRowsResult_Free(t *testing.T) {
	r := newTestResult()
	_, _, _ = r.FetchNumeric()
	r.Free()
	r.Free()

	_, _, err := r.FetchNumeric()
	assert.ErrorIs(t, err, dbalerrors.ErrResultFreed)
}

type failingRows struct{ *SliceRows }

func (failingRows) Err() error { return errors.New("connection reset") }

func TestRowsResult_IterationError(t *testing.T) {
	r := NewResult(failingRows{NewSliceRows([]string{"x"}, nil)})
	_, err := r.FetchAllNumeric()
	assert.EqualError(t, err, "connection reset")
}

func TestAssociate(t *testing.T) {
	assert.Equal(t,
		map[string]any{"a": 1, "b": 3},
		Associate([]string{"a", "b", "b"}, []any{1, 2, 3}),
	)
	assert.Equal(t, map[string]any{"a": 1}, Associate([]string{"a", "b"}, []any{1}))
}

func TestExceptionConverterFunc(t *testing.T) {
	conv := ExceptionConverterFunc(func(err error, query string) error {
		return dbalerrors.NewDriverError(dbalerrors.KindSyntaxError, "", "", err.Error(), err).WithQuery(query)
	})
	err := conv.Convert(errors.New("bad"), "SELEC")
	assert.ErrorIs(t, err, dbalerrors.ErrSyntaxError)
}

func TestQuoteString(t *testing.T) {
	assert.Equal(t, `'it''s'`, QuoteString("it's", false))
	assert.Equal(t, `'a\b'`, QuoteString(`a\b`, false))
	assert.Equal(t, `'a\\b''c'`, QuoteString(`a\b'c`, true))
}
