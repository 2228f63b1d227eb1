// Package pgx is the native PostgreSQL driver built on jackc/pgx.
package pgx

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

const (
	defaultApplicationName = "dbal"
	defaultPort            = 5432

	// MinServerVersion is the oldest server_version_num accepted.
	MinServerVersion = 120000
)

func init() {
	driver.Register(types.DriverPgx, New())
}

// Driver connects through pgx without database/sql.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// New creates the driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string {
	return types.DriverPgx
}

func (d *Driver) Platform() driver.Platform {
	return driver.Platform{Name: "pgsql", SupportsSavepoints: true}
}

func (d *Driver) ExceptionConverter() driver.ExceptionConverter {
	return driver.ExceptionConverterFunc(Convert)
}

// Connect opens a connection and checks the server version.
func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	host, port := hostPort(p)
	connErr := func(err error, message, suggestion string) error {
		return &errors.ConnectionError{
			Driver:     d.Name(),
			Host:       host,
			Port:       port,
			Message:    message,
			Suggestion: suggestion,
			Err:        Convert(err, ""),
		}
	}

	config, err := pgx.ParseConfig(ConnString(p))
	if err != nil {
		return nil, connErr(err,
			fmt.Sprintf("invalid connection configuration: %v", err),
			"Check the connection parameters; options are passed as libpq keywords")
	}
	if _, ok := config.RuntimeParams["application_name"]; !ok {
		config.RuntimeParams["application_name"] = defaultApplicationName
	}

	conn, err := pgx.ConnectConfig(ctx, config)
	if err != nil {
		return nil, connErr(err, err.Error(),
			"Verify PostgreSQL is running and accessible with the provided connection parameters")
	}

	var versionStr string
	if err := conn.QueryRow(ctx, "SHOW server_version_num").Scan(&versionStr); err != nil {
		_ = conn.Close(ctx)
		return nil, connErr(err, fmt.Sprintf("failed to query PostgreSQL version: %v", err), "")
	}
	version, err := strconv.Atoi(versionStr)
	if err != nil {
		_ = conn.Close(ctx)
		return nil, connErr(err, fmt.Sprintf("failed to parse PostgreSQL version '%s': %v", versionStr, err), "")
	}
	if version < MinServerVersion {
		_ = conn.Close(ctx)
		return nil, connErr(nil,
			fmt.Sprintf("PostgreSQL version %d is not supported (need %d+)", version/10000, MinServerVersion/10000),
			fmt.Sprintf("Upgrade to PostgreSQL %d or later", MinServerVersion/10000))
	}

	return &Connection{conn: conn}, nil
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

// ConnString builds a libpq keyword/value connection string.
func ConnString(p types.Params) string {
	host, port := hostPort(p)
	kv := map[string]string{
		"host": host,
		"port": strconv.Itoa(port),
	}
	for k, v := range p.Options {
		kv[k] = v
	}
	set := func(key, value string) {
		if value != "" {
			kv[key] = value
		}
	}
	set("user", p.User)
	set("password", p.Password)
	set("dbname", p.DBName)
	set("sslmode", p.SSLMode)
	set("application_name", p.ApplicationName)
	set("client_encoding", p.Charset)

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+quoteConnValue(kv[k]))
	}
	return strings.Join(parts, " ")
}

var connValueEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func quoteConnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + connValueEscaper.Replace(v) + "'"
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Connection is a single pgx session.
type Connection struct {
	conn     *pgx.Conn
	tx       pgx.Tx
	prepared int
}

var _ driver.Connection = (*Connection)(nil)

func (c *Connection) querier() querier {
	if c.tx != nil {
		return c.tx
	}
	return c.conn
}

// rewrite converts "?" and ":name" placeholders to $n.
func rewrite(sql string) (string, params.Positions) {
	return params.Convert(sql, false, params.NewNumberedConverter())
}

func (c *Connection) Prepare(ctx context.Context, sql string) (driver.Statement, error) {
	native, positions := rewrite(sql)
	c.prepared++
	name := fmt.Sprintf("dbal_stmt_%d", c.prepared)
	if _, err := c.conn.Prepare(ctx, name, native); err != nil {
		return nil, err
	}
	return &Statement{conn: c, name: name, positions: positions, bound: make(map[int]any)}, nil
}

// bind rewrites sql for args. Without arguments sql is sent as written, so a
// "?" operator or a dollar quoted body keeps its text.
func bind(sql string, args []any) (string, []any, error) {
	if len(args) == 0 {
		return sql, nil, nil
	}
	native, positions := rewrite(sql)
	bound, err := positions.Args(params.Positional(args...))
	if err != nil {
		return "", nil, err
	}
	return native, bound, nil
}

func (c *Connection) Query(ctx context.Context, sql string, args ...any) (driver.Result, error) {
	native, bound, err := bind(sql, args)
	if err != nil {
		return nil, err
	}
	rows, err := c.querier().Query(ctx, native, bound...)
	if err != nil {
		return nil, err
	}
	return driver.NewResult(&pgxRows{rows: rows}), nil
}

func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	native, bound, err := bind(sql, args)
	if err != nil {
		return 0, err
	}
	tag, err := c.querier().Exec(ctx, native, bound...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Quote escapes value according to the session's standard_conforming_strings.
func (c *Connection) Quote(value string) string {
	escaped, err := c.conn.PgConn().EscapeString(value)
	if err != nil {
		return driver.QuoteString(value, false)
	}
	return "'" + escaped + "'"
}

func (c *Connection) ServerVersion(ctx context.Context) (string, error) {
	var version string
	if err := c.querier().QueryRow(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to query server version: %w", err)
	}
	return version, nil
}

func (c *Connection) Begin(ctx context.Context) error {
	if c.tx != nil {
		return fmt.Errorf("pgx: a transaction is already active")
	}
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return err
	}
	c.tx = tx
	return nil
}

func (c *Connection) Commit(ctx context.Context) error {
	if c.tx == nil {
		return errors.ErrNoActiveTransaction
	}
	tx := c.tx
	c.tx = nil
	return tx.Commit(ctx)
}

func (c *Connection) Rollback(ctx context.Context) error {
	if c.tx == nil {
		return errors.ErrNoActiveTransaction
	}
	tx := c.tx
	c.tx = nil
	return tx.Rollback(ctx)
}

// Conn exposes the native connection.
func (c *Connection) Conn() *pgx.Conn {
	return c.conn
}

func (c *Connection) Close() error {
	ctx := context.Background()
	if c.tx != nil {
		_ = c.tx.Rollback(ctx)
		c.tx = nil
	}
	return c.conn.Close(ctx)
}

// Statement is a server-side prepared statement.
type Statement struct {
	conn      *Connection
	name      string
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
	rows, err := s.conn.querier().Query(ctx, s.name, args...)
	if err != nil {
		return nil, err
	}
	return driver.NewResult(&pgxRows{rows: rows}), nil
}

func (s *Statement) Close() error {
	return s.conn.conn.Deallocate(context.Background(), s.name)
}

type pgxRows struct {
	rows    pgx.Rows
	columns []string
}

func (r *pgxRows) Columns() []string {
	if r.columns == nil {
		fields := r.rows.FieldDescriptions()
		r.columns = make([]string, len(fields))
		for i, f := range fields {
			r.columns[i] = f.Name
		}
	}
	return r.columns
}

func (r *pgxRows) Next() bool {
	return r.rows.Next()
}

func (r *pgxRows) Values() ([]any, error) {
	return r.rows.Values()
}

func (r *pgxRows) Err() error {
	return r.rows.Err()
}

func (r *pgxRows) Close() error {
	r.rows.Close()
	return r.rows.Err()
}

func (r *pgxRows) RowsAffected() int64 {
	return r.rows.CommandTag().RowsAffected()
}

// Convert maps *pgconn.PgError codes onto the shared taxonomy.
func Convert(err error, query string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &errors.DriverError{
			Kind:     errors.KindFromSQLState(pgErr.Code, pgErr.Message),
			Code:     pgErr.Code,
			SQLState: pgErr.Code,
			Message:  pgErr.Message,
			Query:    query,
			Err:      err,
		}
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return &errors.DriverError{Kind: errors.KindConnection, Message: connectErr.Error(), Query: query, Err: err}
	}
	return err
}
