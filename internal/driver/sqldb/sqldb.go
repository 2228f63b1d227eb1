// Package sqldb implements driver.Connection on top of database/sql. The
// pq, mysql, sqlite and duckdb drivers differ only in their Options.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/internal/params"
)

// Options configures a database/sql backed connection.
type Options struct {
	// DriverName is the database/sql driver name, e.g. "postgres" or "sqlite".
	DriverName string
	DSN        string
	Platform   driver.Platform

	// VersionQuery returns the server version as a single value.
	VersionQuery string

	// InitStatements run once after connecting, e.g. PRAGMA settings.
	InitStatements []string
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Connection pins one connection of a sql.DB so that session state and
// transactions behave like a single driver session.
type Connection struct {
	db   *sql.DB
	conn *sql.Conn
	tx   *sql.Tx
	opts Options
}

var _ driver.Connection = (*Connection)(nil)

// Open connects and verifies the connection with a ping.
func Open(ctx context.Context, opts Options) (*Connection, error) {
	db, err := sql.Open(opts.DriverName, opts.DSN)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, err
	}

	c := &Connection{db: db, conn: conn, opts: opts}
	for _, stmt := range opts.InitStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("init statement %q failed: %w", stmt, err)
		}
	}
	return c, nil
}

func (c *Connection) querier() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

// rewrite converts "?" and ":name" placeholders into the native syntax.
func (c *Connection) rewrite(query string) (string, params.Positions) {
	return params.Convert(query, c.opts.Platform.MySQLStringEscaping, c.opts.Platform.NewConverter())
}

func (c *Connection) Prepare(ctx context.Context, query string) (driver.Statement, error) {
	native, positions := c.rewrite(query)
	stmt, err := c.conn.PrepareContext(ctx, native)
	if err != nil {
		return nil, err
	}
	return &Statement{conn: c, stmt: stmt, positions: positions, bound: make(map[int]any)}, nil
}

// bind rewrites query for args. Without arguments the query is sent as
// written.
func (c *Connection) bind(query string, args []any) (string, []any, error) {
	if len(args) == 0 {
		return query, nil, nil
	}
	native, positions := c.rewrite(query)
	bound, err := positions.Args(params.Positional(args...))
	if err != nil {
		return "", nil, err
	}
	return native, bound, nil
}

func (c *Connection) Query(ctx context.Context, query string, args ...any) (driver.Result, error) {
	native, bound, err := c.bind(query, args)
	if err != nil {
		return nil, err
	}
	rows, err := c.querier().QueryContext(ctx, native, bound...)
	if err != nil {
		return nil, err
	}
	return driver.NewResult(newRows(rows)), nil
}

func (c *Connection) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	native, bound, err := c.bind(query, args)
	if err != nil {
		return 0, err
	}
	res, err := c.querier().ExecContext(ctx, native, bound...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		// not every driver reports affected rows, e.g. for DDL
		return 0, nil
	}
	return n, nil
}

func (c *Connection) Quote(value string) string {
	return driver.QuoteString(value, c.opts.Platform.MySQLStringEscaping)
}

func (c *Connection) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.querier().QueryRowContext(ctx, c.opts.VersionQuery).Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	return strings.TrimSpace(version), nil
}

func (c *Connection) Begin(ctx context.Context) error {
	if c.tx != nil {
		return fmt.Errorf("%s: a transaction is already active", c.opts.DriverName)
	}
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

func (c *Connection) Commit(context.Context) error {
	if c.tx == nil {
		return errors.ErrNoActiveTransaction
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit()
}

func (c *Connection) Rollback(context.Context) error {
	if c.tx == nil {
		return errors.ErrNoActiveTransaction
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback()
}

// DB exposes the underlying pool for callers needing database/sql directly.
func (c *Connection) DB() *sql.DB {
	return c.db
}

func (c *Connection) Close() error {
	if c.tx != nil {
		_ = c.tx.Rollback()
		c.tx = nil
	}
	err := c.conn.Close()
	if cerr := c.db.Close(); err == nil {
		err = cerr
	}
	return err
}

// Statement is a prepared database/sql statement.
type Statement struct {
	conn      *Connection
	stmt      *sql.Stmt
	positions params.Positions
	bound     map[int]any
}

var _ driver.Statement = (*Statement)(nil)

func (s *Statement) BindValue(position int, value any, typ params.ParameterType) error {
	v, err := typ.Bind(value)
	if err != nil {
		return err
	}
	s.bound[position] = v
	return nil
}

func (s *Statement) Execute(ctx context.Context) (driver.Result, error) {
	args := make([]any, len(s.positions))
	for i, b := range s.positions {
		if b.Name != "" {
			return nil, &errors.MixedParameterStyleError{Message: "named placeholder :" + b.Name + " in a prepared statement; expand it first"}
		}
		v, ok := s.bound[b.Index+1]
		if !ok {
			return nil, errors.NewMissingPositionalParameterError(b.Index)
		}
		args[i] = v
	}

	stmt := s.stmt
	if s.conn.tx != nil {
		stmt = s.conn.tx.StmtContext(ctx, s.stmt)
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	return driver.NewResult(newRows(rows)), nil
}

func (s *Statement) Close() error {
	return s.stmt.Close()
}
