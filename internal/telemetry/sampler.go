package telemetry

import "github.com/avbelov/go-ramclfus/internal/cache"

type sampler struct {
	engine *cache.Engine
	sink   hitMissSource
	walker walkerMetrics
}

// hitMissSource is the subset of MetricsSink the sampler reads back;
// *metrics.AtomicSink satisfies it.
type hitMissSource interface {
	Snapshot() (hits, misses, bytes int64)
}

// walkerMetrics is the subset of compressor.Walker the sampler reads;
// kept narrow so the sampler doesn't depend on the compressor package
// for anything but this one call.
type walkerMetrics interface {
	Metrics() (passes, attempted, compressed, tightened, incompressible, stale int64)
}

func newSampler(e *cache.Engine, s hitMissSource, w walkerMetrics) sampler {
	return sampler{engine: e, sink: s, walker: w}
}

// snapshot holds cumulative counters (monotonic, except bytes which is
// the engine's current resident footprint, not a delta source).
type snapshot struct {
	hits, misses int64
	bytesHeld    int64
	objects      int64
	history      int64

	walkerPasses         int64
	walkerCompressed     int64
	walkerTightened      int64
	walkerIncompressible int64
}

func (s sampler) snapshot() snapshot {
	hits, misses, _ := s.sink.Snapshot()
	st := s.engine.Stats()
	passes, _, compressed, tightened, incompressible, _ := s.walker.Metrics()

	return snapshot{
		hits:                 hits,
		misses:               misses,
		bytesHeld:            st.Bytes,
		objects:              st.Objects,
		history:              st.History,
		walkerPasses:         passes,
		walkerCompressed:     compressed,
		walkerTightened:      tightened,
		walkerIncompressible: incompressible,
	}
}

func deltaSnapshot(prev, cur snapshot) snapshot {
	return snapshot{
		hits:                 delta(prev.hits, cur.hits),
		misses:               delta(prev.misses, cur.misses),
		bytesHeld:            cur.bytesHeld,
		objects:              cur.objects,
		history:              cur.history,
		walkerPasses:         delta(prev.walkerPasses, cur.walkerPasses),
		walkerCompressed:     delta(prev.walkerCompressed, cur.walkerCompressed),
		walkerTightened:      delta(prev.walkerTightened, cur.walkerTightened),
		walkerIncompressible: delta(prev.walkerIncompressible, cur.walkerIncompressible),
	}
}

func delta(prev, cur int64) int64 {
	if cur >= prev {
		return cur - prev
	}
	return cur
}
