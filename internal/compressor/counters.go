package compressor

import (
	"sync/atomic"

	"github.com/avbelov/go-ramclfus/internal/cache"
)

type walkerCounters struct {
	passes         atomic.Int64
	attempted      atomic.Int64
	compressed     atomic.Int64
	tightened      atomic.Int64
	incompressible atomic.Int64
	stale          atomic.Int64
}

func newWalkerCounters() *walkerCounters { return &walkerCounters{} }

func (c *walkerCounters) record(s cache.PassStats) {
	c.passes.Add(1)
	c.attempted.Add(s.Attempted)
	c.compressed.Add(s.Compressed)
	c.tightened.Add(s.Tightened)
	c.incompressible.Add(s.Incompressible)
	c.stale.Add(s.Stale)
}

func (c *walkerCounters) snapshot() (passes, attempted, compressed, tightened, incompressible, stale int64) {
	return c.passes.Load(), c.attempted.Load(), c.compressed.Load(),
		c.tightened.Load(), c.incompressible.Load(), c.stale.Load()
}
