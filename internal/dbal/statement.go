package dbal

import (
	"context"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/params"
)

// Statement is a prepared statement with "?" placeholders. Values are bound
// by 1-based position and stay bound across executions.
type Statement struct {
	conn *Connection
	sql  string
	stmt driver.Statement
}

// Prepare prepares sql on the server. Named and array parameters are not
// available here; use ExecuteQuery for those.
func (c *Connection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	stmt, err := c.conn.Prepare(ctx, sql)
	if err != nil {
		return nil, c.convert(err, sql)
	}
	return &Statement{conn: c, sql: sql, stmt: stmt}, nil
}

// SQL returns the statement text as given to Prepare.
func (s *Statement) SQL() string {
	return s.sql
}

func (s *Statement) BindValue(position int, value any, typ params.ParameterType) error {
	return s.stmt.BindValue(position, value, typ)
}

// Execute runs the statement. The result must be consumed or freed before
// the statement is closed.
func (s *Statement) Execute(ctx context.Context) (driver.Result, error) {
	if err := s.conn.checkOpen(); err != nil {
		return nil, err
	}
	res, err := s.stmt.Execute(ctx)
	if err != nil {
		return nil, s.conn.convert(err, s.sql)
	}
	return res, nil
}

func (s *Statement) Close() error {
	return s.stmt.Close()
}
