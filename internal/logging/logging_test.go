package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cybertec-postgresql/dbal/internal/driver/sqlite"
	"github.com/cybertec-postgresql/dbal/internal/logger"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/pkg/types"
)

func newLoggedConnection(t *testing.T, verbose bool) (*Connection, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	d := Wrap(sqlite.New(), logger.New(verbose, &buf))

	conn, err := d.Connect(context.Background(), types.Params{Driver: types.DriverSQLite, Memory: true, Password: "hunter2"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	lc, ok := conn.(*Connection)
	require.True(t, ok, "Connect must return the logging wrapper")
	return lc, &buf
}

func TestConnection_LogsStatements(t *testing.T) {
	ctx := context.Background()
	conn, buf := newLoggedConnection(t, true)

	_, err := conn.Exec(ctx, "CREATE TABLE t (\n  id INTEGER,\n  name TEXT\n)")
	require.NoError(t, err)
	n, err := conn.Exec(ctx, "INSERT INTO t VALUES (?, ?)", 1, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	out := buf.String()
	assert.Contains(t, out, "sqlite: connecting to :memory:")
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, `executing "CREATE TABLE t ( id INTEGER, name TEXT )"`)
	assert.Contains(t, out, `executing "INSERT INTO t VALUES (?, ?)" params=[1 a]`)
	assert.Contains(t, out, "1 row(s) affected")
}

func TestConnection_LogsTransactions(t *testing.T) {
	ctx := context.Background()
	conn, buf := newLoggedConnection(t, true)

	require.NoError(t, conn.Begin(ctx))
	require.NoError(t, conn.Rollback(ctx))
	assert.Error(t, conn.Commit(ctx))

	out := buf.String()
	assert.Contains(t, out, "beginning transaction")
	assert.Contains(t, out, "rolling back transaction")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "commit failed")
}

func TestStatement_LogsBoundValues(t *testing.T) {
	ctx := context.Background()
	conn, buf := newLoggedConnection(t, true)

	stmt, err := conn.Prepare(ctx, "SELECT ? + ?")
	require.NoError(t, err)
	defer stmt.Close()

	require.NoError(t, stmt.BindValue(1, "2", params.Integer))
	require.NoError(t, stmt.BindValue(2, 3, params.Integer))
	res, err := stmt.Execute(ctx)
	require.NoError(t, err)
	v, ok, err := res.FetchOne()
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 5, v)

	assert.Contains(t, buf.String(), `preparing "SELECT ? + ?"`)
	assert.Contains(t, buf.String(), `executing "SELECT ? + ?" params=map[1:2 2:3] types=map[1:integer 2:integer]`)
}

func TestConnection_QuietWhenNotVerbose(t *testing.T) {
	ctx := context.Background()
	conn, buf := newLoggedConnection(t, false)

	_, err := conn.Exec(ctx, "SELECT 1")
	require.NoError(t, err)
	_, err = conn.Exec(ctx, "SELECT * FROM missing")
	require.Error(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "[ERROR]")
	assert.Contains(t, lines[0], "sqlite: exec failed")
}
