package compressor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/avbelov/go-ramclfus/internal/cache"
	"github.com/avbelov/go-ramclfus/internal/scheduler"
	"github.com/avbelov/go-ramclfus/tests/help"
)

type fakeEngine struct {
	calls atomic.Int64
	stats cache.PassStats
}

func (f *fakeEngine) RunCompressionPass() cache.PassStats {
	f.calls.Add(1)
	return f.stats
}

func TestForceCallTriggersAndRecordsMetrics(t *testing.T) {
	mock := clock.NewMock()
	sched := scheduler.New(mock)
	engine := &fakeEngine{stats: cache.PassStats{Attempted: 2, Compressed: 1}}

	w := New(context.Background(), sched, engine, help.Logger(), time.Minute, 1000)
	defer w.Close()

	require.NoError(t, w.ForceCall(time.Second))

	require.Eventually(t, func() bool {
		_, attempted, compressed, _, _, _ := w.Metrics()
		return attempted == 2 && compressed == 1
	}, time.Second, time.Millisecond)
}

func TestForceCallReturnsNilWhenClosed(t *testing.T) {
	mock := clock.NewMock()
	sched := scheduler.New(mock)
	engine := &fakeEngine{}

	w := New(context.Background(), sched, engine, help.Logger(), time.Minute, 1000)
	require.NoError(t, w.Close())

	require.NoError(t, w.ForceCall(10*time.Millisecond))
}

func TestNoOpWalkerIsInert(t *testing.T) {
	var w NoOp
	require.NoError(t, w.ForceCall(time.Millisecond))
	passes, attempted, compressed, tightened, incompressible, stale := w.Metrics()
	require.Zero(t, passes)
	require.Zero(t, attempted)
	require.Zero(t, compressed)
	require.Zero(t, tightened)
	require.Zero(t, incompressible)
	require.Zero(t, stale)
	require.NoError(t, w.Close())
}
