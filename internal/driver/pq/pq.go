// Package pq is the database/sql PostgreSQL driver built on lib/pq.
package pq

import (
	"context"
	sqldriver "database/sql/driver"
	"fmt"
	"net/url"
	"strconv"

	libpq "github.com/lib/pq"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/driver/sqldb"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

const defaultPort = 5432

func init() {
	driver.Register(types.DriverPq, New())
}

// Driver connects through lib/pq.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// New creates the driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string {
	return types.DriverPq
}

func (d *Driver) Platform() driver.Platform {
	return driver.Platform{Name: "pgsql", SupportsSavepoints: true}
}

func (d *Driver) ExceptionConverter() driver.ExceptionConverter {
	return driver.ExceptionConverterFunc(Convert)
}

func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	conn, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:   "postgres",
		DSN:          DSN(p),
		Platform:     d.Platform(),
		VersionQuery: "SHOW server_version",
	})
	if err != nil {
		host, port := hostPort(p)
		return nil, &errors.ConnectionError{
			Driver:     d.Name(),
			Host:       host,
			Port:       port,
			Message:    err.Error(),
			Suggestion: "Verify PostgreSQL is running and accessible with the provided connection parameters",
			Err:        Convert(err, ""),
		}
	}
	return conn, nil
}

func hostPort(p types.Params) (string, int) {
	host, port := p.Host, p.Port
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = defaultPort
	}
	return host, port
}

// DSN builds a postgres:// URL for lib/pq.
func DSN(p types.Params) string {
	host, port := hostPort(p)
	u := url.URL{
		Scheme: "postgres",
		Host:   host + ":" + strconv.Itoa(port),
		Path:   "/" + p.DBName,
	}
	if p.User != "" {
		if p.Password != "" {
			u.User = url.UserPassword(p.User, p.Password)
		} else {
			u.User = url.User(p.User)
		}
	}

	q := url.Values{}
	for k, v := range p.Options {
		q.Set(k, v)
	}
	if p.SSLMode != "" {
		q.Set("sslmode", p.SSLMode)
	}
	if p.ApplicationName != "" {
		q.Set("application_name", p.ApplicationName)
	}
	if p.Charset != "" {
		q.Set("client_encoding", p.Charset)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Convert maps *pq.Error codes onto the shared taxonomy.
func Convert(err error, query string) error {
	if err == nil {
		return nil
	}
	var pqErr *libpq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		kind := errors.KindFromSQLState(code, pqErr.Message)
		return &errors.DriverError{Kind: kind, Code: code, SQLState: code, Message: pqErr.Message, Query: query, Err: err}
	}
	if errors.Is(err, sqldriver.ErrBadConn) {
		return &errors.DriverError{Kind: errors.KindConnectionLost, Message: fmt.Sprintf("connection lost: %v", err), Query: query, Err: err}
	}
	return err
}
