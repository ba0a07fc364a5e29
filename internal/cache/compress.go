package cache

import (
	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/codec"
)

// PassStats summarizes one RunCompressionPass invocation for the
// compression walker's counters.
type PassStats struct {
	Attempted      int64
	Compressed     int64
	Tightened      int64
	Incompressible int64
	Stale          int64
	Retried        int64
}

// compressOutcome reports what attemptCompress did to e, letting a
// caller decide how (or whether) to move its own cursor around it.
type compressOutcome int

const (
	outcomeStale compressOutcome = iota
	outcomeIncompressible
	outcomeTightened
	outcomeCompressed
)

// RunCompressionPass first drains a bounded number of entries left
// over from a prior pass's stale-revalidation failures, then walks L0
// from the cursor's last position, compressing entries toward
// compressPercent of objects. It releases the engine's lock across
// each codec invocation and revalidates the entry by identity and
// buffer reference on reacquire, since the entry may have been
// touched, replaced, or destroyed while the codec ran unlocked.
func (c *Engine) RunCompressionPass() PassStats {
	c.mu.Lock()

	var stats PassStats

	if c.codecTag == codec.None || c.compressPercent <= 0 || c.objects == 0 {
		c.checkInvariants()
		c.mu.Unlock()
		return stats
	}

	c.drainStaleRetries(&stats)

	if c.cursor == nil {
		c.cursor = c.l0.head
		c.ncompressed = 0
	}

	target := int64(float64(c.compressPercent) / 100 * float64(c.objects))
	attempts := 0

	for c.cursor != nil && c.ncompressed < target && attempts < c.doAtMost {
		attempts++
		e := c.cursor

		if e.incompressible() || e.compressed() {
			c.cursor = e.lruNext
			c.ncompressed++
			continue
		}

		outcome := c.attemptCompress(e, c.codecTag, &stats)
		if outcome == outcomeStale {
			// Entry mutated or destroyed while unlocked: give it one
			// more chance via the retry queue instead of just wasting
			// the slot, and resume from wherever the cursor's old
			// successor now is.
			c.staleRetries.tryPush(e.key)
			if c.cursor == e {
				c.cursor = e.lruNext
			}
			continue
		}

		c.cursor = e.lruNext
		c.ncompressed++
	}

	c.checkInvariants()
	c.mu.Unlock()
	return stats
}

// drainStaleRetries re-attempts a bounded number of keys queued by a
// prior pass's stale-revalidation failures. These retries sit outside
// the walker's normal sweep order entirely — they don't touch the
// cursor or ncompressed — so an entry that goes stale again here is
// simply dropped rather than re-enqueued, or one under constant churn
// could retry forever.
func (c *Engine) drainStaleRetries(stats *PassStats) {
	for i := 0; i < staleRetryDrainLimit; i++ {
		k, ok := c.staleRetries.tryPop()
		if !ok {
			return
		}
		e := c.idx.findByKey(k)
		if e == nil || e.incompressible() || e.compressed() {
			continue
		}
		if c.attemptCompress(e, c.codecTag, stats) != outcomeStale {
			stats.Retried++
		}
	}
}

// attemptCompress runs one codec pass over e, releasing the lock while
// the codec itself runs and revalidating e's identity on reacquire. It
// is shared by the main cursor walk and the stale-retry drain so both
// apply identical compress/tighten/incompressible decisions.
func (c *Engine) attemptCompress(e *entry, tag codec.Tag, stats *PassStats) compressOutcome {
	capturedBuf := e.buf
	capturedLen := e.len
	capturedKey := e.key

	c.mu.Unlock()
	worst := c.dispatch.WorstCase(tag, int(capturedLen))
	out := c.bufs.Alloc(worst)
	n, ok := c.dispatch.Compress(tag, out.Bytes(), capturedBuf.Bytes())
	c.mu.Lock()

	stats.Attempted++

	cur := c.idx.findByKey(capturedKey)
	if cur != e || !cur.buf.Same(capturedBuf) {
		out.Release()
		stats.Stale++
		codec.TraceStaleEntry(capturedKey.String())
		return outcomeStale
	}

	if !ok {
		e.setIncompressible(true)
		out.Release()
		stats.Incompressible++
		codec.TraceCodecFailure(tag, capturedKey.String())
		return outcomeIncompressible
	}

	clen := int64(n)
	if float64(clen) > RequiredCompression*float64(e.len) {
		e.setIncompressible(true)
		out.Release()
		stats.Incompressible++
		codec.TraceIncompressible(tag, capturedKey.String(), int(e.len))
		return outcomeIncompressible
	}

	if float64(clen) > RequiredShrink*float64(e.size) {
		c.tightenEntry(e, out)
		stats.Tightened++
		return outcomeTightened
	}

	c.installCompressed(e, tag, out.Resize(int(clen)), clen)
	stats.Compressed++
	return outcomeCompressed
}

// tightenEntry keeps an entry uncompressed but replaces its buffer
// with a fresh allocation of len bytes from the buffer provider, and
// recharges the entry at that allocation's BlockSize. With a pooled
// provider the new block is still rounded up to its size class. The
// scratch compression output is discarded either way.
func (c *Engine) tightenEntry(e *entry, scratch buffer.Ref) {
	tight := c.bufs.AllocCopy(e.buf.Bytes()[:e.len])
	oldCharge := e.size + Overhead
	e.buf.Release()
	e.buf = tight
	e.size = int64(tight.BlockSize())
	newCharge := e.size + Overhead
	c.bytes += newCharge - oldCharge
	c.metrics.AddBytes(newCharge - oldCharge)
	scratch.Release()
}

func (c *Engine) installCompressed(e *entry, tag codec.Tag, out buffer.Ref, clen int64) {
	oldCharge := e.size + Overhead
	e.buf.Release()
	e.buf = out
	e.clen = clen
	e.setCompressedTag(tag)
	e.size = clen
	newCharge := e.size + Overhead
	c.bytes += newCharge - oldCharge
	c.metrics.AddBytes(newCharge - oldCharge)
}
