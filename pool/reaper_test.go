package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaperKeepsInitialFloor(t *testing.T) {
	_, backend := registerFake()
	p, err := New("fake://localhost/db", Config{
		InitialConnections:       2,
		MaxConnections:           2,
		ConnectionTimeoutSeconds: 1,
		SweepIntervalSeconds:     1,
		ReaperEnabled:            true,
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	time.Sleep(2500 * time.Millisecond)

	assert.Equal(t, 2, p.Size(), "reaper must not evict below the initial-connections floor")
	_ = backend
}

func TestReaperEvictsExpiredAboveFloor(t *testing.T) {
	_, _ = registerFake()
	p, err := New("fake://localhost/db", Config{
		InitialConnections:       1,
		MaxConnections:           3,
		ConnectionTimeoutSeconds: 1,
		SweepIntervalSeconds:     1,
		ReaperEnabled:            true,
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	ctx := context.Background()
	c1, err := p.GetConnection(ctx)
	require.NoError(t, err)
	c2, err := p.GetConnection(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, p.Size())
	c1.Close()
	c2.Close()

	time.Sleep(2500 * time.Millisecond)

	assert.Equal(t, 1, p.Size(), "the idle connection above the initial floor should be reaped once expired")
}

func TestReaperCanBeToggledOff(t *testing.T) {
	_, _ = registerFake()
	p, err := New("fake://localhost/db", Config{
		InitialConnections:       1,
		MaxConnections:           1,
		ConnectionTimeoutSeconds: 30,
		SweepIntervalSeconds:     30,
		ReaperEnabled:            true,
	})
	require.NoError(t, err)
	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	p.SetReaper(false)
	assert.Nil(t, p.reaperStop)
}
