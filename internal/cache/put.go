package cache

import (
	"bytes"

	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/codec"
	"github.com/avbelov/go-ramclfus/internal/key"
)

// Put inserts, updates, promotes from history, or refuses. The
// charged footprint is length when copyFlag is set — the cache trusts
// its own buffer pool's rounding — and buf.BlockSize() when the
// caller's buffer is shared by reference.
func (c *Engine) Put(k key.Key, buf buffer.Ref, length int64, copyFlag bool, aux1, aux2 uint32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()

	if c.maxBytes == 0 {
		return false
	}

	var size int64
	if copyFlag {
		size = length
	} else {
		size = int64(buf.BlockSize())
	}

	e := c.findReconciled(k, aux1, aux2)
	if e != nil {
		// Any find, resident or history, counts as a hit before the
		// two cases fork.
		e.hits++
	}

	if e != nil && !e.inHistory() {
		return c.putResidentHit(e, buf, length, copyFlag, size)
	}

	fromHistory := false
	if e != nil {
		c.l1.remove(e)
		fromHistory = true
	}

	// Cold start: nothing has ever been harvested into history, so
	// there is no competing claim on the space this candidate wants.
	// An empty L1 always grants immediate entry if it fits, without
	// touching the seen filter or harvesting anything from L0.
	if c.l1.len() == 0 && c.bytes+size <= c.maxBytes {
		return c.finishInsert(e, fromHistory, nil, k, buf, length, copyFlag, aux1, aux2, size)
	}

	// The seen filter's record is refreshed on every put-miss regardless
	// of whether history has caught up with objects yet — losing a
	// sighting during any period where history trails objects would
	// make a later, truly-repeated offer look like a first sighting.
	// Whether that record constitutes a match only matters for the
	// refusal below.
	seenMatch := true
	if e == nil {
		seenMatch = c.idx.checkSeen(k)
	}

	if e == nil && c.history >= c.objects && !seenMatch {
		// A brand new key must be seen twice before it earns a harvest
		// attempt once history has caught up with the resident set.
		return false
	}

	// The harvest loop never checks fit before dequeuing — it always
	// pulls one L0 victim first, then decides. Only the cold-start fast
	// path above and the checks below a pop ever test bytes+size.
	var victims []*entry
	for {
		victim := c.popL0Victim()
		if victim == nil {
			if c.bytes+size <= c.maxBytes {
				return c.finishInsert(e, fromHistory, victims, k, buf, length, copyFlag, aux1, aux2, size)
			}
			return c.insertHistoryOnly(victims, fromHistory, e, k, buf, aux1, aux2)
		}

		victimCharge := victim.size + Overhead
		c.bytes -= victimCharge
		c.metrics.AddBytes(-victimCharge)
		c.objects--
		victims = append(victims, victim)
		c.tick()

		if fromHistory && c.bytes+victim.size+size > c.maxBytes && victim.density() > e.density() {
			c.cancelPromotion(e, victims)
			return false
		}

		if c.bytes+size <= c.maxBytes {
			return c.finishInsert(e, fromHistory, victims, k, buf, length, copyFlag, aux1, aux2, size)
		}
	}
}

func (c *Engine) putResidentHit(e *entry, buf buffer.Ref, length int64, copyFlag bool, size int64) bool {
	c.touchL0(e)

	// An uncompressed entry whose incoming payload is byte-identical to
	// what it already holds needs no buffer churn at all — re-storing
	// it would just release and reallocate the same bytes under a new
	// charge. The comparison is a full byte-for-byte scan, so a payload
	// that differs anywhere is always stored.
	if !e.compressed() && e.len == length &&
		bytes.Equal(e.buf.Bytes()[:e.len], buf.Bytes()[:length]) {
		return true
	}

	oldCharge := e.size + Overhead
	newBuf := c.storeBuffer(buf, length, copyFlag)
	e.buf.Release()
	e.buf = newBuf
	e.size = size
	e.len = length
	e.clen = 0
	e.setCompressedTag(codec.None)
	e.setIncompressible(false)
	e.setCopySemantics(copyFlag)

	newCharge := e.size + Overhead
	delta := newCharge - oldCharge
	c.bytes += delta
	c.metrics.AddBytes(delta)
	return true
}

// finishInsert lands an admitted candidate in L0 once the harvest loop
// has secured enough headroom, settling the victim stash first.
func (c *Engine) finishInsert(
	e *entry, fromHistory bool, victims []*entry,
	k key.Key, buf buffer.Ref, length int64, copyFlag bool, aux1, aux2 uint32, size int64,
) bool {
	c.disposeVictims(victims, size)

	if fromHistory {
		c.history--
	} else {
		e = &entry{key: k, aux1: aux1, aux2: aux2, hits: 1}
		c.idx.insert(e)
	}

	e.buf = c.storeBuffer(buf, length, copyFlag)
	e.size = size
	e.len = length
	e.clen = 0
	e.setCompressedTag(codec.None)
	e.setIncompressible(false)
	e.setCopySemantics(copyFlag)
	e.setInHistory(false)
	c.l0.pushTail(e)
	c.objects++

	charge := e.size + Overhead
	c.bytes += charge
	c.metrics.AddBytes(charge)

	if c.objects > int64(c.idx.nbuckets()) {
		c.idx.grow()
	}
	return true
}

// insertHistoryOnly is reached when L0 harvesting has run completely
// dry and the candidate still doesn't fit: it is recorded as a bare
// history entry so a later put can detect and promote it. Every
// harvested victim goes back to L0 unconditionally via
// requeueAllVictims, so the resident set keeps the same members when
// the candidate is refused. An entry found in history is put back at
// the L1 tail with its size unchanged — its size (and therefore its
// density) must survive untouched for a later
// promotion attempt to weigh it correctly. Only a brand-new entry gets
// its size set from the rejected candidate's block size.
func (c *Engine) insertHistoryOnly(
	victims []*entry, fromHistory bool, e *entry,
	k key.Key, buf buffer.Ref, aux1, aux2 uint32,
) bool {
	c.requeueAllVictims(victims)

	if fromHistory {
		e.setInHistory(true)
		c.l1.pushTail(e)
		return false
	}

	ne := &entry{key: k, aux1: aux1, aux2: aux2, size: int64(buf.BlockSize()), hits: 1}
	ne.setInHistory(true)
	c.idx.insert(ne)
	c.l1.pushTail(ne)
	c.history++
	return false
}

// cancelPromotion rolls back a losing history-promotion attempt: every
// harvested victim returns to L0 via requeueAllVictims and the
// candidate goes back to the L1 tail, keeping the hit it was credited
// when Put found it.
func (c *Engine) cancelPromotion(e *entry, victims []*entry) {
	c.requeueAllVictims(victims)
	c.l1.pushTail(e)
}
