// Package sqlite is the embedded SQLite driver built on modernc.org/sqlite.
package sqlite

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/driver/sqldb"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// OptionForeignKeys set to "off" disables foreign key enforcement.
const OptionForeignKeys = "foreign_keys"

func init() {
	driver.Register(types.DriverSQLite, New())
}

// Driver opens SQLite database files or in-memory databases.
type Driver struct{}

var _ driver.Driver = (*Driver)(nil)

// New creates the driver.
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Name() string {
	return types.DriverSQLite
}

func (d *Driver) Platform() driver.Platform {
	return driver.Platform{Name: "sqlite", SupportsSavepoints: true}
}

func (d *Driver) ExceptionConverter() driver.ExceptionConverter {
	return driver.ExceptionConverterFunc(Convert)
}

func (d *Driver) Connect(ctx context.Context, p types.Params) (driver.Connection, error) {
	var pragmas []string
	if !strings.EqualFold(p.Options[OptionForeignKeys], "off") {
		pragmas = append(pragmas, "PRAGMA foreign_keys = ON")
	}

	conn, err := sqldb.Open(ctx, sqldb.Options{
		DriverName:     "sqlite",
		DSN:            DSN(p),
		Platform:       d.Platform(),
		VersionQuery:   "SELECT sqlite_version()",
		InitStatements: pragmas,
	})
	if err != nil {
		return nil, &errors.ConnectionError{
			Driver:     d.Name(),
			Message:    err.Error(),
			Suggestion: "Check that " + p.Address() + " exists and is writable",
			Err:        Convert(err, ""),
		}
	}
	return conn, nil
}

// DSN returns the database file, or :memory:. Driver options turn it into a
// file: URI with the options as query parameters; mode=ro opens the file
// read-only.
func DSN(p types.Params) string {
	path := p.Path
	if p.Memory || path == "" {
		path = ":memory:"
	}

	keys := make([]string, 0, len(p.Options))
	for k := range p.Options {
		if k != OptionForeignKeys {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return path
	}
	sort.Strings(keys)

	q := make([]string, 0, len(keys))
	for _, k := range keys {
		q = append(q, url.QueryEscape(k)+"="+url.QueryEscape(p.Options[k]))
	}
	return "file:" + uriPathEscaper.Replace(path) + "?" + strings.Join(q, "&")
}

var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

var codeKinds = map[int]errors.Kind{
	sqlite3.SQLITE_BUSY:                  errors.KindLockWaitTimeout,
	sqlite3.SQLITE_LOCKED:                errors.KindLockWaitTimeout,
	sqlite3.SQLITE_READONLY:              errors.KindReadOnly,
	sqlite3.SQLITE_CANTOPEN:              errors.KindConnection,
	sqlite3.SQLITE_CONSTRAINT_UNIQUE:     errors.KindUniqueConstraintViolation,
	sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY: errors.KindUniqueConstraintViolation,
	sqlite3.SQLITE_CONSTRAINT_NOTNULL:    errors.KindNotNullConstraintViolation,
	sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY: errors.KindForeignKeyViolation,
	sqlite3.SQLITE_CONSTRAINT_CHECK:      errors.KindCheckConstraintViolation,
}

// Convert classifies *sqlite.Error by extended result code, falling back to
// the message text for generic codes such as SQLITE_ERROR.
func Convert(err error, query string) error {
	if err == nil {
		return nil
	}
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return err
	}
	kind, ok := codeKinds[sqlErr.Code()]
	if !ok {
		kind = errors.KindFromSQLiteMessage(sqlErr.Error())
	}
	return &errors.DriverError{
		Kind:    kind,
		Code:    strconv.Itoa(sqlErr.Code()),
		Message: sqlErr.Error(),
		Query:   query,
		Err:     err,
	}
}
