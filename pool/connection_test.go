package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionExecuteAndQuery(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	stmt, err := c.PrepareStatement(ctx, "INSERT INTO t(id, name) VALUES(?, ?)")
	require.NoError(t, err)
	require.NoError(t, stmt.SetInt(1, 1))
	name := "ada"
	require.NoError(t, stmt.SetString(2, &name))
	require.NoError(t, stmt.Execute(ctx))
	assert.EqualValues(t, 1, c.LastRowId())
	stmt.Close()

	rs, err := c.ExecuteQuery(ctx, "SELECT id, name FROM t")
	require.NoError(t, err)
	require.True(t, rs.Next(ctx))
	got, err := rs.GetStringByName("name")
	require.NoError(t, err)
	assert.Equal(t, "ada", got)
	assert.False(t, rs.Next(ctx))
}

func TestConnectionExecuteWithBoundParams(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	err = c.Execute(ctx, "INSERT INTO t(id, name) VALUES(?, ?)", 1, "lin")
	require.NoError(t, err)
	assert.EqualValues(t, 1, c.LastRowId())
}

func TestConnectionTransactionDepth(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.BeginTransaction(ctx))
	require.NoError(t, c.BeginTransaction(ctx))
	assert.True(t, c.InTransaction())
	require.NoError(t, c.Commit(ctx))
	assert.False(t, c.InTransaction())
}

func TestConnectionClearResetsMaxRowsAndTimeout(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	c.SetMaxRows(5)
	c.SetQueryTimeout(9000)
	c.Clear()
	assert.Equal(t, 0, c.MaxRows())
	assert.Equal(t, DefaultQueryTimeoutMs, c.QueryTimeout())
}

func TestConnectionGetLastErrorSentinel(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "?", c.GetLastError())
}

func TestConnectionCloseReturnsToPoolNotDestroyed(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1})
	ctx := context.Background()

	c, err := p.GetConnection(ctx)
	require.NoError(t, err)
	c.Close()
	assert.Equal(t, 1, p.Size(), "Close must return the connection, not destroy it")
}
