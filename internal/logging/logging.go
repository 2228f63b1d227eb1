// Package logging decorates drivers so that every connect, statement and
// transaction boundary is written to a logger.
package logging

import (
	"context"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/logger"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// Driver wraps a driver.Driver.
type Driver struct {
	driver.Driver
	log *logger.Logger
}

var _ driver.Driver = (*Driver)(nil)

// Wrap decorates d. A nil logger uses the package default.
func Wrap(d driver.Driver, l *logger.Logger) *Driver {
	if l == nil {
		l = logger.Default()
	}
	return &Driver{Driver: d, log: l.With(d.Name())}
}

func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	d.log.Debug("connecting to %s", redact(p).Address())
	start := time.Now()
	conn, err := d.Driver.Connect(ctx, p)
	if err != nil {
		d.log.Error("connect failed: %v", err)
		return nil, err
	}
	d.log.Debug("connected in %v", time.Since(start).Round(time.Millisecond))
	return &Connection{Connection: conn, log: d.log}, nil
}

// redact drops the password so parameters can be logged.
func redact(p types.Params) types.Params {
	p.Password = ""
	return p
}

// Connection wraps a driver.Connection.
type Connection struct {
	driver.Connection
	log *logger.Logger
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) Prepare(ctx context.Context, sql string) (driver.Statement, error) {
	c.log.Debug("preparing %q", sql)
	stmt, err := c.Connection.Prepare(ctx, sql)
	if err != nil {
		c.log.Error("prepare failed: %v", err)
		return nil, err
	}
	return &Statement{Statement: stmt, sql: sql, log: c.log}, nil
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.Result, error) {
	c.log.Query(sql, argsOrNil(args), nil)
	res, err := c.Connection.Query(ctx, sql, args...)
	if err != nil {
		c.log.Error("query failed: %v", err)
	}
	return res, err
}

func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	c.log.Query(sql, argsOrNil(args), nil)
	n, err := c.Connection.Exec(ctx, sql, args...)
	if err != nil {
		c.log.Error("exec failed: %v", err)
		return n, err
	}
	c.log.Debug("%d row(s) affected", n)
	return n, nil
}

func (c *Connection) Begin(ctx context.Context) error {
	c.log.Debug("beginning transaction")
	return c.logErr("begin", c.Connection.Begin(ctx))
}

func (c *Connection) Commit(ctx context.Context) error {
	c.log.Debug("committing transaction")
	return c.logErr("commit", c.Connection.Commit(ctx))
}

func (c *Connection) Rollback(ctx context.Context) error {
	c.log.Debug("rolling back transaction")
	return c.logErr("rollback", c.Connection.Rollback(ctx))
}

func (c *Connection) Close() error {
	c.log.Debug("disconnecting")
	return c.logErr("close", c.Connection.Close())
}

func (c *Connection) logErr(op string, err error) error {
	if err != nil {
		c.log.Error("%s failed: %v", op, err)
	}
	return err
}

func argsOrNil(args []any) any {
	if len(args) == 0 {
		return nil
	}
	return args
}

// Statement wraps a driver.Statement and records bound values for logging.
type Statement struct {
	driver.Statement
	sql   string
	log   *logger.Logger
	args  map[int]any
	types map[int]params.ParameterType
}

var _ driver.Statement = (*Statement)(nil)

func (s *Statement) BindValue(position int, value any, typ params.ParameterType) error {
	if s.args == nil {
		s.args = make(map[int]any)
		s.types = make(map[int]params.ParameterType)
	}
	s.args[position] = value
	s.types[position] = typ
	return s.Statement.BindValue(position, value, typ)
}

func (s *Statement) Execute(ctx context.Context) (driver.Result, error) {
	if len(s.args) == 0 {
		s.log.Query(s.sql, nil, nil)
	} else {
		s.log.Query(s.sql, s.args, s.types)
	}
	res, err := s.Statement.Execute(ctx)
	if err != nil {
		s.log.Error("execute failed: %v", err)
	}
	return res, err
}
