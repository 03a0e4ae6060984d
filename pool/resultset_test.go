package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRows(t *testing.T, c *Connection, ctx context.Context, names ...string) {
	t.Helper()
	for i, n := range names {
		require.NoError(t, c.Execute(ctx, "INSERT INTO t(id, name) VALUES(?, ?)", i+1, n))
	}
}

func TestResultSetColumnLookup(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()
	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	seedRows(t, c, ctx, "grace")

	rs, err := c.ExecuteQuery(ctx, "SELECT id, name FROM t")
	require.NoError(t, err)

	idx, err := rs.ColumnIndex("name")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	idx, err = rs.ColumnIndexByNameFold("NAME")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = rs.ColumnIndex("NAME")
	assert.Error(t, err, "ColumnIndex is case-sensitive")
}

func TestResultSetMaxRowsCutoff(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()
	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	seedRows(t, c, ctx, "a", "b", "c")
	c.SetMaxRows(2)

	rs, err := c.ExecuteQuery(ctx, "SELECT id, name FROM t")
	require.NoError(t, err)

	count := 0
	for rs.Next(ctx) {
		count++
	}
	assert.Equal(t, 2, count)
}

func TestResultSetTypedGetters(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()
	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	seedRows(t, c, ctx, "zorro")

	rs, err := c.ExecuteQuery(ctx, "SELECT id, name FROM t")
	require.NoError(t, err)
	require.True(t, rs.Next(ctx))

	id, err := rs.GetInt(1)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	llong, err := rs.GetLLong(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, llong)

	name, err := rs.GetString(2)
	require.NoError(t, err)
	assert.Equal(t, "zorro", name)
}

func TestResultSetInvalidColumnIndex(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()
	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	seedRows(t, c, ctx, "x")

	rs, err := c.ExecuteQuery(ctx, "SELECT id, name FROM t")
	require.NoError(t, err)
	require.True(t, rs.Next(ctx))

	_, err = rs.GetString(99)
	var assertErr *AssertError
	assert.ErrorAs(t, err, &assertErr)
}
