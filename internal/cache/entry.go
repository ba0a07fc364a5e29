package cache

import (
	"github.com/avbelov/go-ramclfus/internal/buffer"
	"github.com/avbelov/go-ramclfus/internal/codec"
	"github.com/avbelov/go-ramclfus/internal/key"
)

// Overhead is the fixed per-entry bookkeeping charge added to an
// entry's buffer footprint when computing the cache's byte budget.
// Hysteresis bounds how far history is allowed to outgrow the
// resident set between ticks.
const (
	Overhead   = 256
	Hysteresis = 10

	// RequiredCompression and RequiredShrink are the thresholds the
	// compression walker uses to decide whether a codec run was worth
	// keeping.
	RequiredCompression = 0.9
	RequiredShrink      = 0.8
)

const (
	flagIncompressible uint8 = 1 << 3
	flagInHistory      uint8 = 1 << 4
	flagCopySemantics  uint8 = 1 << 5
	flagCompressedMask uint8 = 0x07
)

// entry is the cache's per-object record. It carries its own LRU
// linkage (shared between L0 and L1, since an entry is never in both)
// and its own hash-chain linkage, so queues and the index never need a
// side table.
type entry struct {
	key  key.Key
	aux1 uint32
	aux2 uint32

	hits uint64
	size int64 // buffer footprint charged against the byte budget
	len  int64 // logical payload length
	clen int64 // compressed payload length, valid when compressed() is set

	flags uint8
	buf   buffer.Ref

	lruPrev, lruNext *entry
	hashNext         *entry
}

func (e *entry) compressedTag() codec.Tag { return codec.Tag(e.flags & flagCompressedMask) }

func (e *entry) setCompressedTag(t codec.Tag) {
	e.flags = (e.flags &^ flagCompressedMask) | (uint8(t) & flagCompressedMask)
}

func (e *entry) compressed() bool { return e.compressedTag() != codec.None }

func (e *entry) incompressible() bool { return e.flags&flagIncompressible != 0 }
func (e *entry) setIncompressible(v bool) {
	if v {
		e.flags |= flagIncompressible
	} else {
		e.flags &^= flagIncompressible
	}
}

func (e *entry) inHistory() bool { return e.flags&flagInHistory != 0 }
func (e *entry) setInHistory(v bool) {
	if v {
		e.flags |= flagInHistory
	} else {
		e.flags &^= flagInHistory
	}
}

func (e *entry) copySemantics() bool { return e.flags&flagCopySemantics != 0 }
func (e *entry) setCopySemantics(v bool) {
	if v {
		e.flags |= flagCopySemantics
	} else {
		e.flags &^= flagCopySemantics
	}
}

// density is V(e) from the spec: higher means more worth keeping
// resident. It is only ever compared between a history candidate and
// the current L0 victim.
func (e *entry) density() float64 {
	return float64(e.hits+1) / float64(e.size+Overhead)
}

// requeueHits collapses a hit count to a single recency bit, applied
// both to CLOCK survivors in history and to victims requeued back into
// L0 after losing a harvest race.
func requeueHits(h uint64) uint64 {
	if h != 0 {
		return 1
	}
	return 0
}

func (e *entry) matchesTriple(k key.Key, aux1, aux2 uint32) bool {
	return e.key.Equal(k) && e.aux1 == aux1 && e.aux2 == aux2
}
