package params

import (
	"reflect"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/internal/sqlparser"
)

// ExpandArrayParameters is a sqlparser.Visitor that rewrites every placeholder
// to "?" and flattens the bound values into a positional list. Values of an
// array type become one "?" per element; an empty array becomes NULL.
type ExpandArrayParameters struct {
	params Params
	types  Types

	index     int
	sql       strings.Builder
	outParams []any
	outTypes  []ParameterType
	err       error
}

var _ sqlparser.Visitor = (*ExpandArrayParameters)(nil)

// NewExpandArrayParameters creates a visitor expanding the given values.
func NewExpandArrayParameters(params Params, types Types) *ExpandArrayParameters {
	return &ExpandArrayParameters{params: params, types: types}
}

func (e *ExpandArrayParameters) AcceptPositionalParameter(sql string) {
	if e.err != nil {
		return
	}
	index := e.index
	e.index++

	if e.params.IsNamed() {
		e.err = &errors.MixedParameterStyleError{Message: "positional placeholder used with named values"}
		return
	}
	if index >= len(e.params.Positional) {
		e.err = errors.NewMissingPositionalParameterError(index)
		return
	}
	e.accept(e.params.Positional[index], e.types.At(index))
}

func (e *ExpandArrayParameters) AcceptNamedParameter(sql string) {
	if e.err != nil {
		return
	}
	name := sql[1:]

	if !e.params.IsNamed() {
		if len(e.params.Positional) > 0 {
			e.err = &errors.MixedParameterStyleError{Message: "named placeholder " + sql + " used with positional values"}
		} else {
			e.err = errors.NewMissingNamedParameterError(name)
		}
		return
	}
	value, ok := e.params.Named[name]
	if !ok {
		e.err = errors.NewMissingNamedParameterError(name)
		return
	}
	e.accept(value, e.types.Of(name))
}

func (e *ExpandArrayParameters) AcceptOther(sql string) {
	e.sql.WriteString(sql)
}

func (e *ExpandArrayParameters) accept(value any, typ ParameterType) {
	if !typ.IsArray() {
		e.sql.WriteByte('?')
		e.outParams = append(e.outParams, value)
		e.outTypes = append(e.outTypes, typ)
		return
	}

	elements, ok := toSlice(value)
	if !ok {
		e.err = &errors.UnknownParameterTypeError{Type: typ}
		return
	}
	if len(elements) == 0 {
		e.sql.WriteString("NULL")
		return
	}
	elem := typ.ElementType()
	for i, v := range elements {
		if i > 0 {
			e.sql.WriteString(", ")
		}
		e.sql.WriteByte('?')
		e.outParams = append(e.outParams, v)
		e.outTypes = append(e.outTypes, elem)
	}
}

// SQL returns the rewritten statement.
func (e *ExpandArrayParameters) SQL() string {
	return e.sql.String()
}

// Parameters returns the flattened positional values.
func (e *ExpandArrayParameters) Parameters() []any {
	return e.outParams
}

// Types returns the flattened positional types.
func (e *ExpandArrayParameters) Types() []ParameterType {
	return e.outTypes
}

// Err returns the first binding error encountered.
func (e *ExpandArrayParameters) Err() error {
	return e.err
}

// Expand rewrites sql so that every placeholder is a positional "?" and
// returns the matching flat values and types.
func Expand(sql string, mysqlStringEscaping bool, params Params, types Types) (string, []any, []ParameterType, error) {
	v := NewExpandArrayParameters(params, types)
	sqlparser.Parse(sql, mysqlStringEscaping, v)
	if v.err != nil {
		return "", nil, nil, v.err
	}
	return v.SQL(), v.Parameters(), v.Types(), nil
}

// NeedsExpansion reports whether the statement must go through Expand
// before a driver can bind the values positionally.
func NeedsExpansion(params Params, types Types) bool {
	return params.IsNamed() || types.HasArray()
}

// toSlice returns the elements of a slice or array value. []byte is a
// scalar binary value and is not expanded.
func toSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []byte:
		return nil, false
	case nil:
		return nil, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
