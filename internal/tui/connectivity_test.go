package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type results struct {
	mu  sync.Mutex
	got []bool
}

func (r *results) add(online bool) {
	r.mu.Lock()
	r.got = append(r.got, online)
	r.mu.Unlock()
}

func (r *results) all() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.got...)
}

func TestConnectivityMonitor_Check(t *testing.T) {
	backend := newFakeBackend()
	res := &results{}
	m := newConnectivityMonitor(backend, time.Minute, res.add, nil)

	m.Check(context.Background())
	backend.setPingErr(errors.New("refused"))
	m.Check(context.Background())

	assert.Equal(t, []bool{true, false}, res.all())
}

func TestConnectivityMonitor_CancelledCheckReportsNothing(t *testing.T) {
	backend := newFakeBackend()
	res := &results{}
	m := newConnectivityMonitor(backend, time.Minute, res.add, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m.Check(ctx)

	assert.Empty(t, res.all())
	assert.Zero(t, backend.count("Ping"))
}

func TestConnectivityMonitor_WithoutHealthService(t *testing.T) {
	res := &results{}
	m := newConnectivityMonitor(nil, time.Millisecond, res.add, nil)

	require.NoError(t, m.Start(context.Background()))
	m.Check(context.Background())
	m.Stop()

	assert.Empty(t, res.all())
}

func TestConnectivityMonitor_StartChecksImmediately(t *testing.T) {
	backend := newFakeBackend()
	res := &results{}
	m := newConnectivityMonitor(backend, time.Hour, res.add, nil)

	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()
	// a second start keeps the running schedule
	require.NoError(t, m.Start(context.Background()))

	assert.Eventually(t, func() bool { return len(res.all()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []bool{true}, res.all())
}

func TestApp_ConnectivityMonitorDrivesState(t *testing.T) {
	backend := newFakeBackend()
	backend.setPingErr(errors.New("refused"))
	ta := newTestApp(t, backend)
	ta.connectivity = newConnectivityMonitor(backend, time.Minute, ta.setOnline, nil)

	ta.connectivity.Check(context.Background())
	assert.False(t, ta.State().IsOnline)

	backend.setPingErr(nil)
	ta.connectivity.Check(context.Background())
	assert.True(t, ta.State().IsOnline)
}
