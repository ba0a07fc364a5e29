// Package cache implements the CLFUS (Clocked Least Frequently Used
// by Size) replacement engine: a dual-queue admission and eviction
// core over a bucketed hash index, with an asynchronous background
// compression walker. It holds no knowledge of how its caller serves
// network requests or persists anything to disk — it is a plain
// in-memory structure mutated under a caller-supplied lock.
package cache

import (
	"sync"

	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/codec"
	"github.com/avbelov/go-ramclfus/internal/key"
)

// BufferProvider supplies the reference-counted scratch and payload
// buffers the engine stores values in. *buffer.Pool implements it.
type BufferProvider interface {
	Alloc(size int) buffer.Ref
	AllocCopy(src []byte) buffer.Ref
}

// MetricsSink receives the engine's hit/miss counts and signed byte
// deltas. Implementations must be safe to call under the engine's lock
// (they are called while it is held).
type MetricsSink interface {
	AddHits(n int64)
	AddMisses(n int64)
	AddBytes(delta int64)
}

// Engine is the CLFUS core. All of its exported methods acquire the
// injected lock internally, so a caller never needs to wrap a call in
// its own Lock/Unlock.
type Engine struct {
	mu sync.Locker

	maxBytes int64
	bytes    int64
	objects  int64
	history  int64

	l0, l1 lruQueue
	idx    *index

	cursor      *entry
	ncompressed int64

	codecTag        codec.Tag
	compressPercent int
	doAtMost        int
	dispatch        codec.Dispatch

	bufs    BufferProvider
	metrics MetricsSink

	staleRetries *staleRetryQueue
}

// Config bundles Engine's construction-time parameters. Compression
// and DoAtMost may be changed later via SetCompression; everything
// else is fixed for the engine's lifetime.
type Config struct {
	MaxBytes        int64
	Lock            sync.Locker
	Buffers         BufferProvider
	Metrics         MetricsSink
	Dispatch        codec.Dispatch
	CompressionTag  codec.Tag
	CompressPercent int
	DoAtMost        int
}

func New(cfg Config) *Engine {
	lock := cfg.Lock
	if lock == nil {
		lock = &sync.Mutex{}
	}
	dispatch := cfg.Dispatch
	if dispatch == nil {
		dispatch = codec.Default()
	}
	doAtMost := cfg.DoAtMost
	if doAtMost <= 0 {
		doAtMost = 64
	}
	return &Engine{
		mu:              lock,
		maxBytes:        cfg.MaxBytes,
		idx:             newIndex(),
		codecTag:        cfg.CompressionTag,
		compressPercent: cfg.CompressPercent,
		doAtMost:        doAtMost,
		dispatch:        dispatch,
		bufs:            cfg.Buffers,
		metrics:         cfg.Metrics,
		staleRetries:    newStaleRetryQueue(staleRetryDrainLimit * 4),
	}
}

// SetCompression updates the walker's target codec and fraction. It
// takes effect on the walker's next invocation.
func (c *Engine) SetCompression(tag codec.Tag, percent, doAtMost int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.codecTag = tag
	c.compressPercent = percent
	if doAtMost > 0 {
		c.doAtMost = doAtMost
	}
}

// Stats is a point-in-time snapshot of the engine's accounting
// counters, useful for tests and telemetry.
type Stats struct {
	Bytes   int64
	Objects int64
	History int64
}

func (c *Engine) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Bytes: c.bytes, Objects: c.objects, History: c.history}
}

// Get looks up (key, aux1, aux2). A history hit and a cold miss are
// both reported as misses — only resident hits return a buffer.
func (c *Engine) Get(k key.Key, aux1, aux2 uint32) (buffer.Ref, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()

	if c.maxBytes == 0 {
		return buffer.Ref{}, 0, false
	}

	e := c.idx.find(k, aux1, aux2)
	if e == nil {
		c.metrics.AddMisses(1)
		return buffer.Ref{}, 0, false
	}
	if e.inHistory() {
		// A history hit still refreshes the entry's CLOCK position even
		// though it reports a miss — the entry stays competitive for a
		// future promotion attempt instead of aging out untouched.
		c.l1.touch(e)
		c.metrics.AddMisses(1)
		return buffer.Ref{}, 0, false
	}

	c.touchL0(e)
	e.hits++

	if !e.compressed() {
		c.metrics.AddHits(1)
		return e.buf.Retain(), e.len, true
	}

	out := c.bufs.Alloc(int(e.len))
	if !c.dispatch.Decompress(e.compressedTag(), out.Bytes(), e.buf.Bytes()[:e.clen]) {
		out.Release()
		c.destroy(e)
		c.metrics.AddMisses(1)
		return buffer.Ref{}, 0, false
	}
	out = out.Resize(int(e.len))

	if e.copySemantics() {
		c.metrics.AddHits(1)
		return out, e.len, true
	}

	oldCharge := e.size + Overhead
	e.buf.Release()
	e.buf = out
	e.size = int64(out.BlockSize())
	e.clen = 0
	e.setCompressedTag(codec.None)
	newCharge := e.size + Overhead
	delta := newCharge - oldCharge
	c.bytes += delta
	c.metrics.AddBytes(delta)
	c.metrics.AddHits(1)
	return e.buf.Retain(), e.len, true
}

// Fixup retargets the aux-key discriminators of whatever entry
// currently matches (key, oldAux1, oldAux2), resident or history.
func (c *Engine) Fixup(k key.Key, oldAux1, oldAux2, newAux1, newAux2 uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()

	if c.maxBytes == 0 {
		return false
	}
	e := c.idx.find(k, oldAux1, oldAux2)
	if e == nil {
		return false
	}
	e.aux1, e.aux2 = newAux1, newAux2
	return true
}

// moveCompressed keeps the compression cursor valid whenever e is about
// to be unlinked or repositioned: if e is the cursor, it advances to
// e's old successor, or — when e has no successor (e is the L0 tail)
// — retracts to e's predecessor and adjusts the walker's progress
// count down by one, so the cursor always continues to reference a
// valid L0 entry rather than going stale at nil while L0 is nonempty.
func (c *Engine) moveCompressed(e *entry) {
	if c.cursor != e {
		return
	}
	if e.lruNext != nil {
		c.cursor = e.lruNext
		return
	}
	if c.ncompressed > 0 {
		c.ncompressed--
	}
	c.cursor = e.lruPrev
}

// unlinkL0 removes e from L0, keeping the compression cursor valid.
func (c *Engine) unlinkL0(e *entry) {
	c.moveCompressed(e)
	c.l0.remove(e)
}

// touchL0 repositions e to the L0 tail, keeping the compression cursor
// valid first — the entry's compression state hasn't changed, only its
// recency position has.
func (c *Engine) touchL0(e *entry) {
	c.moveCompressed(e)
	c.l0.touch(e)
}

func (c *Engine) popL0Victim() *entry {
	e := c.l0.head
	if e == nil {
		return nil
	}
	c.unlinkL0(e)
	return e
}

// destroy removes e from the hash index and its queue entirely,
// releasing its buffer if resident and reversing its byte charge.
func (c *Engine) destroy(e *entry) {
	c.idx.remove(e)
	if e.inHistory() {
		c.l1.remove(e)
		c.history--
		return
	}
	c.unlinkL0(e)
	c.objects--
	charge := e.size + Overhead
	c.bytes -= charge
	c.metrics.AddBytes(-charge)
	e.buf.Release()
	e.buf = buffer.Ref{}
}

// storeBuffer realizes the put-time copy?share policy: copy allocates
// a fresh owned buffer, share retains the caller's.
func (c *Engine) storeBuffer(buf buffer.Ref, length int64, copyFlag bool) buffer.Ref {
	if copyFlag {
		return c.bufs.AllocCopy(buf.Bytes()[:length])
	}
	return buf.Retain()
}

// victimizeToHistory migrates an already-harvested L0 entry into L1,
// releasing its buffer — the L0→L1 half of the lifecycle in §3.
func (c *Engine) victimizeToHistory(v *entry) {
	v.buf.Release()
	v.buf = buffer.Ref{}
	v.setInHistory(true)
	c.l1.pushTail(v)
	c.history++
}

// disposeVictims settles the harvest stash once a candidate has
// actually landed in L0: each victim is requeued there if bytes plus
// the candidate's raw size plus the victim's raw size still clears
// max_bytes — the same Overhead-exclusive arithmetic every fit check
// in the harvest loop uses — otherwise it is victimized into history.
func (c *Engine) disposeVictims(victims []*entry, candidateSize int64) {
	for _, v := range victims {
		if c.bytes+candidateSize+v.size <= c.maxBytes {
			v.hits = requeueHits(v.hits)
			charge := v.size + Overhead
			c.bytes += charge
			c.metrics.AddBytes(charge)
			c.objects++
			c.l0.pushTail(v)
		} else {
			c.victimizeToHistory(v)
		}
	}
}

// requeueAllVictims unconditionally restores every harvested victim to
// L0 with no fit check at all — used whenever the put that triggered
// harvesting is abandoned rather than committed, so the resident set
// ends up with the same members and byte charge it started with. Each
// victim is appended at the L0 tail in harvest order with its hits
// collapsed by requeueHits, so recency order and hit counts are not
// restored.
func (c *Engine) requeueAllVictims(victims []*entry) {
	for _, v := range victims {
		v.hits = requeueHits(v.hits)
		charge := v.size + Overhead
		c.bytes += charge
		c.metrics.AddBytes(charge)
		c.objects++
		c.l0.pushTail(v)
	}
}

// findReconciled walks the hash chain for k looking for an entry whose
// aux keys match (aux1, aux2), destroying every aux-mismatched entry
// it passes along the way — the stale-version cleanup described in
// the GLOSSARY's "Aux keys" entry.
func (c *Engine) findReconciled(k key.Key, aux1, aux2 uint32) *entry {
	for {
		e := c.idx.findByKey(k)
		if e == nil {
			return nil
		}
		if e.aux1 == aux1 && e.aux2 == aux2 {
			return e
		}
		c.destroy(e)
	}
}

// tick is the CLOCK hand over L1: called once per harvested victim
// from inside Put. It pops the L1 head and right-shifts its hit count
// by one; a zeroed entry is freed outright, anything else survives,
// clamped to a single recency bit, and moves to the tail. Regardless
// of which happened, if history has drifted more than Hysteresis past
// objects, one further entry is popped from the head and freed
// unconditionally, so history cannot grow unboundedly faster than the
// resident set.
func (c *Engine) tick() {
	v := c.l1.popHead()
	if v == nil {
		return
	}
	v.hits >>= 1
	if v.hits != 0 {
		v.hits = requeueHits(v.hits)
		c.l1.pushTail(v)
	} else {
		c.idx.remove(v)
		c.history--
	}
	if c.history > c.objects+Hysteresis {
		if v2 := c.l1.popHead(); v2 != nil {
			c.idx.remove(v2)
			c.history--
		}
	}
}
