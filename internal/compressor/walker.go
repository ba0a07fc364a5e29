// Package compressor implements the cache's background compression
// walker: a ticker-driven worker that periodically runs one pass of
// the engine's CLOCK-like compression sweep. Its shape — a provider
// goroutine turning ticks into invocations, a force-call channel for
// synchronous test/admin triggers, and its own atomic counters — is a
// direct generalization of the teacher's eviction worker from
// "evict when over a soft limit" to "invoke a compression pass".
package compressor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avbelov/go-ramclfus/internal/cache"
	"github.com/avbelov/go-ramclfus/internal/scheduler"
	"github.com/avbelov/go-ramclfus/internal/shared/rate"
)

var ErrWalkerNotResponded = errors.New("compression walker not responded")

// Walker drives the engine's compression pass periodically and on
// demand.
type Walker interface {
	ForceCall(timeout time.Duration) error
	Metrics() (passes, attempted, compressed, tightened, incompressible, stale int64)
	Close() error
}

// Engine is the subset of *cache.Engine the walker depends on.
type Engine interface {
	RunCompressionPass() cache.PassStats
}

// Worker is the concrete Walker. It ticks at ~1 Hz (matching the
// spec's scheduler contract) and paces its own invocations through a
// rate.Jitter so an admin's ForceCall burst can't starve the ticker.
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	engine   Engine
	logger   *slog.Logger
	counters *walkerCounters
	invokeCh chan struct{}
	jitter   *rate.Jitter
}

// New starts a Worker bound to sched. The interval governs the
// ticker's period; callsPerSec bounds how often a pass is actually
// allowed to run (ForceCall bursts included).
func New(ctx context.Context, sched scheduler.Scheduler, engine Engine, logger *slog.Logger, interval time.Duration, callsPerSec int) Walker {
	ctx, cancel := context.WithCancel(ctx)
	if callsPerSec <= 0 {
		callsPerSec = 1
	}
	w := &Worker{
		ctx:      ctx,
		cancel:   cancel,
		engine:   engine,
		logger:   logger,
		counters: newWalkerCounters(),
		invokeCh: make(chan struct{}),
		jitter:   rate.NewJitter(ctx, callsPerSec),
	}
	return w.run(sched, interval)
}

func (w *Worker) ForceCall(timeout time.Duration) error {
	after := time.NewTimer(timeout)
	defer after.Stop()

	select {
	case <-w.ctx.Done():
	case w.invokeCh <- struct{}{}:
	case <-after.C:
		return ErrWalkerNotResponded
	}
	return nil
}

func (w *Worker) Metrics() (passes, attempted, compressed, tightened, incompressible, stale int64) {
	return w.counters.snapshot()
}

func (w *Worker) Close() error {
	w.cancel()
	return nil
}

func (w *Worker) run(sched scheduler.Scheduler, interval time.Duration) *Worker {
	w.logger.Info("compression walker is running", "interval", interval.String())

	stopTicker := sched.ScheduleEvery(interval, func() {
		select {
		case <-w.ctx.Done():
		case w.invokeCh <- struct{}{}:
		default:
			// A pass is already queued; drop this tick rather than block it.
		}
	})

	go func() {
		defer w.logger.Info("compression walker is stopped")
		defer stopTicker()
		for {
			select {
			case <-w.ctx.Done():
				return
			case <-w.invokeCh:
				w.jitter.Take()
				stats := w.engine.RunCompressionPass()
				w.counters.record(stats)
				if stats.Attempted > 0 {
					w.logger.Debug("compression pass",
						"attempted", stats.Attempted,
						"compressed", stats.Compressed,
						"tightened", stats.Tightened,
						"incompressible", stats.Incompressible,
						"stale", stats.Stale,
					)
				}
			}
		}
	}()

	return w
}
