// Package params binds statement parameters: it expands array values into
// placeholder lists and rewrites placeholders into vendor syntax.
package params

import (
	"fmt"
	"strconv"

	"github.com/cybertec-postgresql/dbal/internal/errors"
)

// ParameterType tells a driver how to bind a value.
type ParameterType int

const (
	String ParameterType = iota
	Integer
	Boolean
	Null
	Binary
	LargeObject
	ASCII
)

// Array parameter types expand into one placeholder per element.
const (
	IntegerArray ParameterType = iota + 100
	StringArray
	ASCIIArray
	BinaryArray
)

var typeNames = map[ParameterType]string{
	String:       "string",
	Integer:      "integer",
	Boolean:      "boolean",
	Null:         "null",
	Binary:       "binary",
	LargeObject:  "lob",
	ASCII:        "ascii",
	IntegerArray: "integer[]",
	StringArray:  "string[]",
	ASCIIArray:   "ascii[]",
	BinaryArray:  "binary[]",
}

func (t ParameterType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ParameterType(%d)", int(t))
}

// IsArray reports whether t expands into a list of placeholders.
func (t ParameterType) IsArray() bool {
	return t >= IntegerArray && t <= BinaryArray
}

// ElementType returns the type of each element of an array type, or t itself.
func (t ParameterType) ElementType() ParameterType {
	switch t {
	case IntegerArray:
		return Integer
	case StringArray:
		return String
	case ASCIIArray:
		return ASCII
	case BinaryArray:
		return Binary
	}
	return t
}

// ParseType resolves a type name as printed by String.
func ParseType(name string) (ParameterType, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return String, fmt.Errorf("unknown parameter type %q", name)
}

// Params holds statement values, either positional or named. Named keys
// carry no leading colon.
type Params struct {
	Positional []any
	Named      map[string]any
}

// Positional builds positional parameters.
func Positional(values ...any) Params {
	return Params{Positional: values}
}

// Named builds named parameters.
func Named(values map[string]any) Params {
	return Params{Named: values}
}

// IsNamed reports whether the values are keyed by name.
func (p Params) IsNamed() bool {
	return p.Named != nil
}

// Len returns the number of values.
func (p Params) Len() int {
	if p.IsNamed() {
		return len(p.Named)
	}
	return len(p.Positional)
}

// Types holds the parameter types matching the shape of Params. Values
// without a declared type bind as String.
type Types struct {
	Positional []ParameterType
	Named      map[string]ParameterType
}

// PositionalTypes builds positional types.
func PositionalTypes(types ...ParameterType) Types {
	return Types{Positional: types}
}

// NamedTypes builds named types.
func NamedTypes(types map[string]ParameterType) Types {
	return Types{Named: types}
}

// At returns the type of the positional parameter at index.
func (t Types) At(index int) ParameterType {
	if index < len(t.Positional) {
		return t.Positional[index]
	}
	return String
}

// Of returns the type of the named parameter.
func (t Types) Of(name string) ParameterType {
	if typ, ok := t.Named[name]; ok {
		return typ
	}
	return String
}

// HasArray reports whether any declared type is an array type.
func (t Types) HasArray() bool {
	for _, typ := range t.Positional {
		if typ.IsArray() {
			return true
		}
	}
	for _, typ := range t.Named {
		if typ.IsArray() {
			return true
		}
	}
	return false
}

// Bind converts value into the representation drivers expect for t. String,
// the default for undeclared types, passes values through unchanged. Array
// types must be expanded before binding.
func (t ParameterType) Bind(value any) (any, error) {
	if value == nil || t == Null {
		return nil, nil
	}
	switch t {
	case String:
		return value, nil
	case ASCII:
		if b, ok := value.([]byte); ok {
			return string(b), nil
		}
		return value, nil
	case Integer:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int8:
			return int64(v), nil
		case int16:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case uint8:
			return int64(v), nil
		case uint16:
			return int64(v), nil
		case uint32:
			return int64(v), nil
		case bool:
			if v {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("cannot bind %q as integer: %w", v, err)
			}
			return n, nil
		}
		return value, nil
	case Boolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("cannot bind %q as boolean: %w", v, err)
			}
			return b, nil
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		}
		return value, nil
	case Binary, LargeObject:
		switch v := value.(type) {
		case []byte:
			return v, nil
		case string:
			return []byte(v), nil
		}
		return value, nil
	}
	return nil, &errors.UnknownParameterTypeError{Type: t}
}
