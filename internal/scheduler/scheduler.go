// Package scheduler implements the ticker-driven background worker the
// compression walker runs on. It is the generalization of the
// teacher's eviction worker: instead of "evict when over a soft
// limit", it invokes an arbitrary callback at a fixed interval and
// exposes the volume mutex the whole cache serializes on.
package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Scheduler is the contract the cache engine's callers depend on: a
// periodic callback driver plus the lock that protects the volume the
// cache lives in.
type Scheduler interface {
	ScheduleEvery(interval time.Duration, fn func()) (stop func())
	Locker() sync.Locker
}

// Worker is the concrete Scheduler. A single Worker can drive any
// number of independent periodic callbacks, each on its own ticker, so
// the compression walker and any future periodic task share one
// volume mutex without sharing a goroutine.
type Worker struct {
	clock clock.Clock
	mu    sync.Mutex
}

// New builds a Worker. A nil clock uses the real wall clock; tests
// inject a *clock.Mock to drive ticks deterministically.
func New(c clock.Clock) *Worker {
	if c == nil {
		c = clock.New()
	}
	return &Worker{clock: c}
}

func (w *Worker) Locker() sync.Locker { return &w.mu }

// ScheduleEvery starts a goroutine that calls fn every interval until
// the returned stop function is called. Matches the teacher's
// evictor.provider ticker loop, generalized past eviction-specific
// logic.
func (w *Worker) ScheduleEvery(interval time.Duration, fn func()) (stop func()) {
	ticker := w.clock.Ticker(interval)
	done := make(chan struct{})
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}
