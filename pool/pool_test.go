package pool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, cfg Config) (*Pool, *fakeBackend) {
	t.Helper()
	_, backend := registerFake()
	p, err := New("fake://localhost/db", cfg)
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Stop)
	return p, backend
}

func TestPoolStartOpensInitialConnections(t *testing.T) {
	p, backend := newTestPool(t, Config{InitialConnections: 3, MaxConnections: 5})
	assert.Equal(t, 3, p.Size())
	backend.mu.Lock()
	assert.Equal(t, 3, backend.opens)
	backend.mu.Unlock()
}

func TestPoolGetConnectionReusesIdle(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 2})

	c, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Size())
	assert.Equal(t, 1, p.Active())

	c.Close()
	assert.Equal(t, 0, p.Active())

	c2, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Size(), "reusing the idle connection must not grow the pool")
	c2.Close()
}

func TestPoolGrowsUpToMax(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 0, MaxConnections: 2, ConnectionTimeoutSeconds: 1})

	c1, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	c2, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Size())

	_, err = p.GetConnection(context.Background())
	require.Error(t, err, "pool at MaxConnections with nothing idle must return immediately, not block")

	c1.Close()
	c2.Close()
}

func TestPoolGetConnectionFailsFastWhenExhausted(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 1, MaxConnections: 1, ConnectionTimeoutSeconds: 1})

	c, err := p.GetConnection(context.Background())
	require.NoError(t, err)
	defer c.Close()

	_, err = p.GetConnection(context.Background())
	assert.Error(t, err)
}

func TestPoolStopDestroysAllConnections(t *testing.T) {
	_, backend := registerFake()
	p, err := New("fake://localhost/db", Config{InitialConnections: 2, MaxConnections: 2})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))

	p.Stop()
	assert.Equal(t, 0, p.Size())
	_ = backend
}

func TestIsSupportedReflectsRegistry(t *testing.T) {
	registerFake()
	assert.True(t, IsSupported("fake://localhost/db"))
	assert.False(t, IsSupported("nonexistent://localhost/db"))
}

func TestPoolVersion(t *testing.T) {
	p, _ := newTestPool(t, Config{InitialConnections: 0, MaxConnections: 1})
	assert.Equal(t, Version, p.Version())
}
