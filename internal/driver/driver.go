// Package driver defines the contract between the connection facade and
// the vendor drivers. Statements handed to a driver use "?" placeholders;
// each driver rewrites them into its native syntax.
package driver

import (
	"context"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// Driver opens connections to one kind of database.
type Driver interface {
	Connect(ctx context.Context, p types.Params) (Connection, error)
	ExceptionConverter() ExceptionConverter
	Platform() Platform
	Name() string
}

// Platform describes the SQL dialect properties the facade relies on.
type Platform struct {
	// Name is the platform name accepted by params.ConverterForPlatform.
	Name string

	// MySQLStringEscaping selects backslash escapes when scanning literals.
	MySQLStringEscaping bool

	// SupportsSavepoints enables nested transactions.
	SupportsSavepoints bool
}

// NewConverter returns a placeholder converter for the platform.
func (p Platform) NewConverter() params.Converter {
	c, ok := params.ConverterForPlatform(p.Name)
	if !ok {
		return params.NewQuestionMarkConverter()
	}
	return c
}

// Connection is a single driver-level session.
type Connection interface {
	Prepare(ctx context.Context, sql string) (Statement, error)
	Query(ctx context.Context, sql string, args ...any) (Result, error)
	Exec(ctx context.Context, sql string, args ...any) (int64, error)
	Quote(value string) string
	ServerVersion(ctx context.Context) (string, error)

	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Close() error
}

// Statement is a prepared statement. Positions are 1-based.
type Statement interface {
	BindValue(position int, value any, typ params.ParameterType) error
	Execute(ctx context.Context) (Result, error)
	Close() error
}

// Result is a forward-only cursor over the rows of an executed statement.
// The Fetch methods report ok=false once the rows are exhausted.
type Result interface {
	FetchNumeric() (row []any, ok bool, err error)
	FetchAssociative() (row map[string]any, ok bool, err error)
	FetchOne() (value any, ok bool, err error)
	FetchAllNumeric() ([][]any, error)
	FetchAllAssociative() ([]map[string]any, error)
	FetchFirstColumn() ([]any, error)

	// RowCount returns the rows affected by a DML statement, or the rows
	// read so far for a query.
	RowCount() (int64, error)
	ColumnCount() int
	ColumnNames() []string
	Free()
}

// ExceptionConverter translates vendor errors into *errors.DriverError.
// Errors it does not recognize are returned unchanged.
type ExceptionConverter interface {
	Convert(err error, query string) error
}

// QuoteString quotes value as a string literal. Single quotes are doubled;
// with mysqlEscaping backslashes are doubled as well.
func QuoteString(value string, mysqlEscaping bool) string {
	if mysqlEscaping {
		value = strings.ReplaceAll(value, `\`, `\\`)
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// ExceptionConverterFunc adapts a function to ExceptionConverter.
type ExceptionConverterFunc func(err error, query string) error

func (f ExceptionConverterFunc) Convert(err error, query string) error {
	return f(err, query)
}
