// Package mysql is the MySQL and MariaDB driver built on go-sql-driver/mysql.
package mysql

import (
	"context"
	sqldriver "database/sql/driver"
	"net"
	"strconv"

	gomysql "github.com/go-sql-driver/mysql"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/driver/sqldb"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

const defaultPort = 3306

func init() {
	driver.Register(types.DriverMySQL, New())
}

// Driver connects through go-sql-driver/mysql.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// New creates the driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string {
	return types.DriverMySQL
}

// Platform enables backslash escapes in literals, which MySQL honors
// unless NO_BACKSLASH_ESCAPES is set.
func (d *Driver) Platform() driver.Platform {
	return driver.Platform{Name: "mysql", MySQLStringEscaping: true, SupportsSavepoints: true}
}

func (d *Driver) ExceptionConverter() driver.ExceptionConverter {
	return driver.ExceptionConverterFunc(Convert)
}

func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	conn, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:   "mysql",
		DSN:          DSN(p),
		Platform:     d.Platform(),
		VersionQuery: "SELECT VERSION()",
	})
	if err != nil {
		host, port := hostPort(p)
		return nil, &errors.ConnectionError{
			Driver:     d.Name(),
			Host:       host,
			Port:       port,
			Message:    err.Error(),
			Suggestion: "Check MYSQL_HOST, MYSQL_PORT and the credentials, and that the server accepts TCP connections",
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

// DSN builds a go-sql-driver DSN (user:password@tcp(host:port)/dbname?params).
func DSN(p types.Params) string {
	host, port := hostPort(p)

	cfg := gomysql.NewConfig()
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.DBName = p.DBName

	params := make(map[string]string, len(p.Options)+1)
	for k, v := range p.Options {
		params[k] = v
	}
	if p.Charset != "" {
		params["charset"] = p.Charset
	}
	if len(params) > 0 {
		cfg.Params = params
	}
	return cfg.FormatDSN()
}

// Convert maps *mysql.MySQLError numbers onto the shared taxonomy.
func Convert(err error, query string) error {
	if err == nil {
		return nil
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return &errors.DriverError{
			Kind:     errors.KindFromMySQLCode(myErr.Number),
			Code:     strconv.Itoa(int(myErr.Number)),
			SQLState: string(myErr.SQLState[:]),
			Message:  myErr.Message,
			Query:    query,
			Err:      err,
		}
	}
	if errors.Is(err, gomysql.ErrInvalidConn) || errors.Is(err, sqldriver.ErrBadConn) {
		return &errors.DriverError{Kind: errors.KindConnectionLost, Message: err.Error(), Query: query, Err: err}
	}
	return err
}
