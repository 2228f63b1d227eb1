// Package duckdb is the embedded analytical database driver built on duckdb-go.
package duckdb

import (
	"context"
	"net/url"
	"sort"
	"strings"

	duckdb "github.com/duckdb/duckdb-go/v2"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/driver/sqldb"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

func init() {
	driver.Register(types.DriverDuckDB, New())
}

// Driver opens DuckDB database files or in-memory databases.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// New creates the driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string {
	return types.DriverDuckDB
}

// Platform uses $n placeholders. DuckDB has no SAVEPOINT support.
func (d *Driver) Platform() driver.Platform {
	return driver.Platform{Name: "duckdb"}
}

func (d *Driver) ExceptionConverter() driver.ExceptionConverter {
	return driver.ExceptionConverterFunc(Convert)
}

func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	conn, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:   "duckdb",
		DSN:          DSN(p),
		Platform:     d.Platform(),
		VersionQuery: "SELECT version()",
	})
	if err != nil {
		return nil, &errors.ConnectionError{
			Driver:     d.Name(),
			Message:    err.Error(),
			Suggestion: "Check that " + p.Address() + " is not locked by another process",
			Err:        Convert(err, ""),
		}
	}
	return conn, nil
}

// DSN returns the database path ("" for in-memory) with the options as
// DuckDB configuration settings, e.g. access_mode=READ_ONLY or threads=4.
func DSN(p types.Params) string {
	dsn := p.Path
	if p.Memory {
		dsn = ""
	}
	if len(p.Options) == 0 {
		return dsn
	}

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	q := make([]string, 0, len(keys))
	for _, k := range keys {
		q = append(q, url.QueryEscape(k)+"="+url.QueryEscape(p.Options[k]))
	}
	return dsn + "?" + strings.Join(q, "&")
}

// Convert classifies *duckdb.Error by its message.
func Convert(err error, query string) error {
	if err == nil {
		return nil
	}
	var duckErr *duckdb.Error
	if !errors.As(err, &duckErr) {
		return err
	}
	return &errors.DriverError{
		Kind:    errors.KindFromDuckDBMessage(duckErr.Msg),
		Message: duckErr.Msg,
		Query:   query,
		Err:     err,
	}
}
