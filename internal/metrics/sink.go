// Package metrics provides the default MetricsSink the root Cache
// wires into the engine when the caller doesn't supply its own: two
// monotonic atomic counters mirroring cache_ram_hits and
// cache_ram_misses, and a signed atomic counter that accumulates the
// cache_ram_bytes deltas from spec.md §6.
package metrics

import "sync/atomic"

// AtomicSink is a process-local MetricsSink. It never errors and never
// blocks, so it's safe to call from inside the engine's lock.
type AtomicSink struct {
	hits   atomic.Int64
	misses atomic.Int64
	bytes  atomic.Int64
}

func NewAtomicSink() *AtomicSink { return &AtomicSink{} }

func (s *AtomicSink) AddHits(n int64)      { s.hits.Add(n) }
func (s *AtomicSink) AddMisses(n int64)    { s.misses.Add(n) }
func (s *AtomicSink) AddBytes(delta int64) { s.bytes.Add(delta) }

// Snapshot returns a point-in-time read of all three counters.
func (s *AtomicSink) Snapshot() (hits, misses, bytes int64) {
	return s.hits.Load(), s.misses.Load(), s.bytes.Load()
}
