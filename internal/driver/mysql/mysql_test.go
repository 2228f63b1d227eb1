package mysql

import (
	"io"
	"testing"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/errors"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

func TestDSN(t *testing.T) {
	dsn := DSN(types.Params{
		Host:     "db",
		Port:     3307,
		User:     "root",
		Password: "secret",
		DBName:   "shop",
		Charset:  "utf8mb4",
	})

	cfg, err := gomysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "tcp", cfg.Net)
	assert.Equal(t, "db:3307", cfg.Addr)
	assert.Equal(t, "shop", cfg.DBName)
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestDSN_Defaults(t *testing.T) {
	cfg, err := gomysql.ParseDSN(DSN(types.Params{DBName: "app"}))
	require.NoError(t, err)
	assert.Equal(t, "localhost:3306", cfg.Addr)
}

func TestConvert(t *testing.T) {
	tests := []struct {
		number uint16
		want   *errors.DriverError
	}{
		{1062, errors.ErrUniqueConstraintViolation},
		{1213, errors.ErrDeadlock},
		{1146, errors.ErrTableNotFound},
		{1064, errors.ErrSyntaxError},
		{1452, errors.ErrForeignKeyViolation},
		{1048, errors.ErrNotNullConstraintViolation},
	}
	for _, tt := range tests {
		myErr := &gomysql.MySQLError{Number: tt.number, SQLState: [5]byte{'2', '3', '0', '0', '0'}, Message: "boom"}
		err := Convert(myErr, "INSERT INTO t VALUES (1)")
		assert.ErrorIs(t, err, tt.want, "error %d", tt.number)

		var de *errors.DriverError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "23000", de.SQLState)
		assert.Equal(t, "boom", de.Message)
	}

	assert.ErrorIs(t, Convert(gomysql.ErrInvalidConn, ""), errors.ErrConnectionLost)
	assert.Same(t, io.EOF, Convert(io.EOF, ""))
}

func TestPlatform(t *testing.T) {
	d, err := driver.Lookup(types.DriverMySQL)
	require.NoError(t, err)
	p := d.Platform()
	assert.True(t, p.MySQLStringEscaping)
	assert.Equal(t, "mysql", p.Name)
}
