// Package dbal is the connection facade: it resolves a driver from the
// registry, expands and binds parameters, converts driver errors, caches
// query results and keeps track of nested transactions.
package dbal

import (
	"context"
	"fmt"

	"github.com/cybertec-postgresql/dbal/internal/cache"
	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/internal/logger"
	"github.com/cybertec-postgresql/dbal/internal/logging"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// Option configures Open.
type Option func(*options)

type options struct {
	log      *logger.Logger
	cache    cache.Cache
	registry *driver.Registry
}

// WithLogger routes every driver call through the logging middleware.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithResultCache sets the cache used by query cache profiles that do not
// carry their own.
func WithResultCache(c cache.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithRegistry looks drivers up in r instead of the default registry.
func WithRegistry(r *driver.Registry) Option {
	return func(o *options) { o.registry = r }
}

// Connection wraps one driver connection. It is not safe for concurrent use.
type Connection struct {
	params      types.Params
	driver      driver.Driver
	platform    driver.Platform
	converter   driver.ExceptionConverter
	conn        driver.Connection
	resultCache cache.Cache
	closed      bool

	nestingLevel int
	rollbackOnly bool
}

// Open connects using p. A URL in p is resolved first and its driver wins.
func Open(ctx context.Context, p types.Params, opts ...Option) (*Connection, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	p, err := p.Resolve()
	if err != nil {
		return nil, err
	}
	if p.Driver == "" {
		return nil, &types.ConfigError{Field: "driver", Message: "no driver given"}
	}

	var d driver.Driver
	if o.registry != nil {
		d, err = o.registry.Lookup(p.Driver)
	} else {
		d, err = driver.Lookup(p.Driver)
	}
	if err != nil {
		return nil, err
	}
	if o.log != nil {
		d = logging.Wrap(d, o.log)
	}

	conn, err := d.Connect(ctx, p)
	if err != nil {
		return nil, err
	}

	return &Connection{
		params:      p,
		driver:      d,
		platform:    d.Platform(),
		converter:   d.ExceptionConverter(),
		conn:        conn,
		resultCache: o.cache,
	}, nil
}

// Params returns the resolved connection parameters.
func (c *Connection) Params() types.Params {
	return c.params
}

// DriverName returns the name the driver is registered under.
func (c *Connection) DriverName() string {
	return c.driver.Name()
}

func (c *Connection) Platform() driver.Platform {
	return c.platform
}

// ResultCache returns the connection level result cache, or nil.
func (c *Connection) ResultCache() cache.Cache {
	return c.resultCache
}

func (c *Connection) convert(err error, sql string) error {
	if err == nil || c.converter == nil {
		return err
	}
	return c.converter.Convert(err, sql)
}

func (c *Connection) checkOpen() error {
	if c.closed {
		return errors.ErrConnectionClosed
	}
	return nil
}

// bind expands named and array parameters into "?" placeholders and converts
// each value according to its type.
func (c *Connection) bind(sql string, p params.Params, t params.Types) (string, []any, error) {
	values, typs := p.Positional, t.Positional
	if params.NeedsExpansion(p, t) {
		var err error
		sql, values, typs, err = params.Expand(sql, c.platform.MySQLStringEscaping, p, t)
		if err != nil {
			return "", nil, err
		}
	}

	args := make([]any, len(values))
	for i, v := range values {
		typ := params.String
		if i < len(typs) {
			typ = typs[i]
		}
		bound, err := typ.Bind(v)
		if err != nil {
			return "", nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		args[i] = bound
	}
	return sql, args, nil
}

// ExecuteQuery runs a statement that returns rows. With a non-nil profile the
// result is served from, or written to, the result cache.
func (c *Connection) ExecuteQuery(ctx context.Context, sql string, p params.Params, t params.Types, qcp *cache.QueryCacheProfile) (driver.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if qcp != nil {
		return c.executeCacheQuery(ctx, sql, p, t, *qcp)
	}
	return c.executeQuery(ctx, sql, p, t)
}

func (c *Connection) executeQuery(ctx context.Context, sql string, p params.Params, t params.Types) (driver.Result, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	expanded, args, err := c.bind(sql, p, t)
	if err != nil {
		return nil, err
	}
	res, err := c.conn.Query(ctx, expanded, args...)
	if err != nil {
		return nil, c.convert(err, sql)
	}
	return res, nil
}

func (c *Connection) executeCacheQuery(ctx context.Context, sql string, p params.Params, t params.Types, qcp cache.QueryCacheProfile) (driver.Result, error) {
	resultCache := qcp.Cache
	if resultCache == nil {
		resultCache = c.resultCache
	}
	if resultCache == nil {
		return nil, errors.ErrNoResultDriverConfigured
	}

	cacheKey, realKey, err := qcp.GenerateCacheKeys(sql, p, t, c.params)
	if err != nil {
		return nil, err
	}
	cached, ok, err := cache.Lookup(ctx, resultCache, cacheKey, realKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read result cache: %w", err)
	}
	if ok {
		return cached, nil
	}

	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, err
	}
	return cache.NewCachingResult(ctx, resultCache, cacheKey, realKey, qcp.Lifetime, res), nil
}

// ExecuteStatement runs a statement and returns the number of affected rows.
func (c *Connection) ExecuteStatement(ctx context.Context, sql string, p params.Params, t params.Types) (int64, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	expanded, args, err := c.bind(sql, p, t)
	if err != nil {
		return 0, err
	}
	n, err := c.conn.Exec(ctx, expanded, args...)
	if err != nil {
		return 0, c.convert(err, sql)
	}
	return n, nil
}

// FetchNumeric returns the first row as a list.
func (c *Connection) FetchNumeric(ctx context.Context, sql string, p params.Params, t params.Types) ([]any, bool, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, false, err
	}
	defer res.Free()
	row, ok, err := res.FetchNumeric()
	return row, ok, c.convert(err, sql)
}

// FetchAssociative returns the first row keyed by column name.
func (c *Connection) FetchAssociative(ctx context.Context, sql string, p params.Params, t params.Types) (map[string]any, bool, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, false, err
	}
	defer res.Free()
	row, ok, err := res.FetchAssociative()
	return row, ok, c.convert(err, sql)
}

// FetchOne returns the first column of the first row.
func (c *Connection) FetchOne(ctx context.Context, sql string, p params.Params, t params.Types) (any, bool, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, false, err
	}
	defer res.Free()
	value, ok, err := res.FetchOne()
	return value, ok, c.convert(err, sql)
}

func (c *Connection) FetchAllNumeric(ctx context.Context, sql string, p params.Params, t params.Types) ([][]any, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, err
	}
	defer res.Free()
	rows, err := res.FetchAllNumeric()
	return rows, c.convert(err, sql)
}

func (c *Connection) FetchAllAssociative(ctx context.Context, sql string, p params.Params, t params.Types) ([]map[string]any, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, err
	}
	defer res.Free()
	rows, err := res.FetchAllAssociative()
	return rows, c.convert(err, sql)
}

func (c *Connection) FetchFirstColumn(ctx context.Context, sql string, p params.Params, t params.Types) ([]any, error) {
	res, err := c.executeQuery(ctx, sql, p, t)
	if err != nil {
		return nil, err
	}
	defer res.Free()
	column, err := res.FetchFirstColumn()
	return column, c.convert(err, sql)
}

// Quote quotes value as a string literal for the connected platform. A closed
// connection quotes by the platform's escaping rules alone.
func (c *Connection) Quote(value string) string {
	if c.closed {
		return driver.QuoteString(value, c.platform.MySQLStringEscaping)
	}
	return c.conn.Quote(value)
}

func (c *Connection) ServerVersion(ctx context.Context) (string, error) {
	if err := c.checkOpen(); err != nil {
		return "", err
	}
	v, err := c.conn.ServerVersion(ctx)
	return v, c.convert(err, "")
}

// Native returns the underlying driver connection.
func (c *Connection) Native() driver.Connection {
	return c.conn
}

// Close releases the connection. An open transaction is discarded by the
// server.
func (c *Connection) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.nestingLevel = 0
	c.rollbackOnly = false
	return c.conn.Close()
}
