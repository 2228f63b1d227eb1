package params

import (
	"strconv"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/internal/sqlparser"
)

// Binding says where the value of one native placeholder comes from:
// a named value when Name is set, otherwise the positional value at Index.
type Binding struct {
	Name  string
	Index int
}

// Positions lists the bindings of the native placeholders in order.
type Positions []Binding

// Args resolves the bindings against p.
func (pos Positions) Args(p Params) ([]any, error) {
	args := make([]any, len(pos))
	for i, b := range pos {
		if b.Name != "" {
			if !p.IsNamed() {
				return nil, &errors.MixedParameterStyleError{Message: "named placeholder :" + b.Name + " used with positional values"}
			}
			v, ok := p.Named[b.Name]
			if !ok {
				return nil, errors.NewMissingNamedParameterError(b.Name)
			}
			args[i] = v
			continue
		}
		if p.IsNamed() {
			return nil, &errors.MixedParameterStyleError{Message: "positional placeholder used with named values"}
		}
		if b.Index >= len(p.Positional) {
			return nil, errors.NewMissingPositionalParameterError(b.Index)
		}
		args[i] = p.Positional[b.Index]
	}
	return args, nil
}

// Converter is a visitor rewriting placeholders into a vendor syntax.
type Converter interface {
	sqlparser.Visitor
	SQL() string
	Positions() Positions
}

// NumberedConverter rewrites placeholders to prefix+n with n counting from 1.
// A named parameter keeps the number of its first occurrence.
type NumberedConverter struct {
	prefix     string
	sql        strings.Builder
	positional int
	names      map[string]int
	positions  Positions
}

// NewNumberedConverter creates a converter to PostgreSQL style $1, $2, ...
func NewNumberedConverter() *NumberedConverter {
	return NewPrefixedConverter("$")
}

// NewPrefixedConverter creates a converter numbering placeholders after
// prefix, e.g. "@p" for SQL Server or ":param" for Oracle.
func NewPrefixedConverter(prefix string) *NumberedConverter {
	return &NumberedConverter{prefix: prefix, names: make(map[string]int)}
}

func (c *NumberedConverter) AcceptPositionalParameter(string) {
	c.positions = append(c.positions, Binding{Index: c.positional})
	c.positional++
	c.placeholder(len(c.positions))
}

func (c *NumberedConverter) AcceptNamedParameter(sql string) {
	name := sql[1:]
	n, ok := c.names[name]
	if !ok {
		c.positions = append(c.positions, Binding{Name: name})
		n = len(c.positions)
		c.names[name] = n
	}
	c.placeholder(n)
}

func (c *NumberedConverter) AcceptOther(sql string) {
	c.sql.WriteString(sql)
}

func (c *NumberedConverter) placeholder(n int) {
	c.sql.WriteString(c.prefix)
	c.sql.WriteString(strconv.Itoa(n))
}

func (c *NumberedConverter) SQL() string {
	return c.sql.String()
}

func (c *NumberedConverter) Positions() Positions {
	return c.positions
}

// NameMap returns the number assigned to each named parameter.
func (c *NumberedConverter) NameMap() map[string]int {
	return c.names
}

// QuestionMarkConverter rewrites named placeholders to "?". Every occurrence
// of a name takes its own slot.
type QuestionMarkConverter struct {
	sql        strings.Builder
	positional int
	positions  Positions
}

// NewQuestionMarkConverter creates a converter for MySQL and SQLite.
func NewQuestionMarkConverter() *QuestionMarkConverter {
	return &QuestionMarkConverter{}
}

func (c *QuestionMarkConverter) AcceptPositionalParameter(sql string) {
	c.positions = append(c.positions, Binding{Index: c.positional})
	c.positional++
	c.sql.WriteString(sql)
}

func (c *QuestionMarkConverter) AcceptNamedParameter(sql string) {
	c.positions = append(c.positions, Binding{Name: sql[1:]})
	c.sql.WriteByte('?')
}

func (c *QuestionMarkConverter) AcceptOther(sql string) {
	c.sql.WriteString(sql)
}

func (c *QuestionMarkConverter) SQL() string {
	return c.sql.String()
}

func (c *QuestionMarkConverter) Positions() Positions {
	return c.positions
}

// Convert runs c over sql and returns the rewritten statement and its bindings.
func Convert(sql string, mysqlStringEscaping bool, c Converter) (string, Positions) {
	sqlparser.Parse(sql, mysqlStringEscaping, c)
	return c.SQL(), c.Positions()
}

// ConverterForPlatform returns a fresh converter for a platform name
// (pgsql, duckdb, mysql, sqlite, sqlsrv, oci).
func ConverterForPlatform(platform string) (Converter, bool) {
	switch platform {
	case "pgsql", "postgres", "duckdb":
		return NewNumberedConverter(), true
	case "sqlsrv", "mssql":
		return NewPrefixedConverter("@p"), true
	case "oci", "oracle":
		return NewPrefixedConverter(":param"), true
	case "mysql", "sqlite":
		return NewQuestionMarkConverter(), true
	}
	return nil, false
}
